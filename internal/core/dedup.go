package core

// recordedSaleKeys collects every identifier under which a manual ledger
// entry may already represent a sale: its related document id, sale id,
// reference number and payment details. Reference numbers and payment
// details shaped like "{base}-{suffix}" additionally contribute each
// hyphen-bounded prefix, so "INV-0042-A" in the ledger matches a sale
// invoiced "INV-0042". The prefix match is a heuristic carried over from
// the legacy books, not a guaranteed join key.
func recordedSaleKeys(manual []Transaction) map[string]struct{} {
	keys := make(map[string]struct{})
	add := func(v string) {
		if v != "" {
			keys[v] = struct{}{}
		}
	}
	addWithPrefix := func(v string) {
		add(v)
		for i, r := range v {
			if r == '-' && i > 0 {
				add(v[:i])
			}
		}
	}

	for _, t := range manual {
		add(t.RelatedDocID)
		add(t.SaleID)
		addWithPrefix(t.ReferenceNo)
		addWithPrefix(t.PaymentDetails)
	}
	return keys
}

// ExcludeRecordedSales removes sale-derived transactions that a manual
// ledger entry already books, so the same sale is never counted twice. A
// sale is excluded when any of its own identifiers appears in the set
// collected from the manual entries.
func ExcludeRecordedSales(manual, sales []Transaction) []Transaction {
	if len(sales) == 0 {
		return sales
	}
	recorded := recordedSaleKeys(manual)
	if len(recorded) == 0 {
		return sales
	}

	kept := sales[:0:0]
	for _, s := range sales {
		if matchesRecorded(s, recorded) {
			continue
		}
		kept = append(kept, s)
	}
	return kept
}

func matchesRecorded(s Transaction, recorded map[string]struct{}) bool {
	for _, key := range []string{s.ID, s.RelatedDocID, s.InvoiceNo, s.PaymentDetails} {
		if key == "" {
			continue
		}
		if _, ok := recorded[key]; ok {
			return true
		}
	}
	return false
}
