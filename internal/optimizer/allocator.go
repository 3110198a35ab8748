package optimizer

import (
	"sort"

	"github.com/inflationfighter/price-service/internal/catalog"
)

// SingleStoreTotals computes, for every store, the cost of buying the whole
// basket there. Lines the store does not price contribute nothing; ItemsPriced
// tells how many lines did. The result follows the order of stores.
func SingleStoreTotals(stores []catalog.Store, categories map[string]*catalog.Category, basket []BasketItem) []StoreTotal {
	totals := make([]StoreTotal, 0, len(stores))
	for _, s := range stores {
		t := StoreTotal{StoreID: s.ID, StoreName: s.Name, Color: s.Color}
		for _, item := range basket {
			cat, ok := categories[item.CategoryID]
			if !ok {
				continue
			}
			price, ok := cat.Prices.Get(s.ID)
			if !ok {
				continue
			}
			t.Total += price * catalog.Cents(item.Quantity)
			t.ItemsPriced++
		}
		totals = append(totals, t)
	}
	return totals
}

// RankSingleStores returns the cheapest and the most expensive store totals.
// Stores that price none of the basket lines are not candidates, so an empty
// store never ranks as the best deal. Ties keep the earlier store.
func RankSingleStores(totals []StoreTotal) (best, worst StoreTotal, err error) {
	candidates := make([]StoreTotal, 0, len(totals))
	for _, t := range totals {
		if t.ItemsPriced > 0 {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return StoreTotal{}, StoreTotal{}, ErrNoPricedItems
	}

	asc := make([]StoreTotal, len(candidates))
	copy(asc, candidates)
	sort.SliceStable(asc, func(i, j int) bool {
		return asc[i].Total < asc[j].Total
	})

	desc := make([]StoreTotal, len(candidates))
	copy(desc, candidates)
	sort.SliceStable(desc, func(i, j int) bool {
		return desc[i].Total > desc[j].Total
	})

	return asc[0], desc[0], nil
}

// MultiStoreAllocation assigns every basket line independently to the
// eligible store with the lowest regular price. Ties go to the store that
// comes first in eligible. Lines no eligible store prices are left out.
// Repeated category IDs are allocated as separate lines.
func MultiStoreAllocation(categories map[string]*catalog.Category, basket []BasketItem, eligible []catalog.Store) Allocation {
	var alloc Allocation
	for _, item := range basket {
		cat, ok := categories[item.CategoryID]
		if !ok {
			continue
		}

		var (
			winner catalog.Store
			price  catalog.Cents
			found  bool
		)
		for _, s := range eligible {
			p, ok := cat.Prices.Get(s.ID)
			if !ok {
				continue
			}
			if !found || p < price {
				winner, price, found = s, p, true
			}
		}
		if !found {
			continue
		}

		line := AllocationLine{
			CategoryID: cat.ID,
			Name:       cat.Name,
			StoreID:    winner.ID,
			StoreName:  winner.Name,
			Color:      winner.Color,
			Price:      price,
			Quantity:   item.Quantity,
		}
		if d, ok := cat.Deal(winner.ID); ok {
			deal := d
			line.Deal = &deal
		}
		alloc.Lines = append(alloc.Lines, line)
		alloc.Total += line.LineTotal()
	}
	return alloc
}
