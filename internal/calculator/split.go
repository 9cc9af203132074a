// Package calculator computes how much each participant owes for a purchase.
//
// Shared items are divided evenly across all participants; assigned items are
// billed to one person. Items without a price are left out of every sum.
package calculator

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/mrlokans/grocery-share/internal/entities"
)

var (
	// ErrNoParticipants is returned when a per-person amount is requested for
	// a purchase with nobody to split between.
	ErrNoParticipants = errors.New("purchase has no participants")

	// ErrNotParticipant is returned when the person is not part of the purchase.
	ErrNotParticipant = errors.New("person is not a participant")
)

// PersonShare is one participant's part of a purchase.
type PersonShare struct {
	PersonID   uint            `json:"person_id"`
	Individual decimal.Decimal `json:"individual"`
	Shared     decimal.Decimal `json:"shared"`
	Owed       decimal.Decimal `json:"owed"`
}

// Split is the full breakdown of a purchase.
type Split struct {
	Total       decimal.Decimal `json:"total"`
	SharedTotal decimal.Decimal `json:"shared_total"`
	Shares      []PersonShare   `json:"shares"`
	// Unallocated sums assigned items whose person is gone or no longer a
	// participant. Nobody owes it until the item is reassigned.
	Unallocated decimal.Decimal `json:"unallocated"`
	// Unpriced counts items that were skipped for lack of a price.
	Unpriced int `json:"unpriced"`
}

// Total sums every priced item.
func Total(items []entities.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.Price.Valid {
			sum = sum.Add(item.Price.Decimal)
		}
	}
	return sum
}

// IndividualTotal sums the priced items assigned to person.
func IndividualTotal(items []entities.LineItem, person uint) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.Price.Valid && assignedTo(item, person) {
			sum = sum.Add(item.Price.Decimal)
		}
	}
	return sum
}

// SharedTotal sums the priced shared items.
func SharedTotal(items []entities.LineItem) decimal.Decimal {
	sum := decimal.Zero
	for _, item := range items {
		if item.Price.Valid && item.SplitMode == entities.SplitShared {
			sum = sum.Add(item.Price.Decimal)
		}
	}
	return sum
}

// SharedShare is each participant's equal part of the shared items.
func SharedShare(items []entities.LineItem, participants []uint) (decimal.Decimal, error) {
	n := len(unique(participants))
	if n == 0 {
		return decimal.Zero, ErrNoParticipants
	}
	return SharedTotal(items).Div(decimal.NewFromInt(int64(n))), nil
}

// Owed is what person pays: their assigned items plus their shared share.
func Owed(items []entities.LineItem, participants []uint, person uint) (decimal.Decimal, error) {
	share, err := SharedShare(items, participants)
	if err != nil {
		return decimal.Zero, err
	}
	if !contains(participants, person) {
		return decimal.Zero, ErrNotParticipant
	}
	return IndividualTotal(items, person).Add(share), nil
}

// Calculate produces the breakdown for every participant, in the order given.
// When every item is priced and assigned to a current participant, the owed
// amounts add up to Total.
func Calculate(participants []uint, items []entities.LineItem) (*Split, error) {
	people := unique(participants)
	share, err := SharedShare(items, people)
	if err != nil {
		return nil, err
	}

	split := &Split{
		Total:       Total(items),
		SharedTotal: SharedTotal(items),
		Shares:      make([]PersonShare, 0, len(people)),
		Unallocated: decimal.Zero,
	}
	for _, person := range people {
		individual := IndividualTotal(items, person)
		split.Shares = append(split.Shares, PersonShare{
			PersonID:   person,
			Individual: individual,
			Shared:     share,
			Owed:       individual.Add(share),
		})
	}

	for _, item := range items {
		if !item.Price.Valid {
			split.Unpriced++
			continue
		}
		if item.SplitMode != entities.SplitAssigned {
			continue
		}
		if item.PersonID == nil || !contains(people, *item.PersonID) {
			split.Unallocated = split.Unallocated.Add(item.Price.Decimal)
		}
	}
	return split, nil
}

// Items strips the display fields from line item details.
func Items(details []entities.LineItemDetail) []entities.LineItem {
	items := make([]entities.LineItem, 0, len(details))
	for _, d := range details {
		items = append(items, d.LineItem)
	}
	return items
}

func assignedTo(item entities.LineItem, person uint) bool {
	return item.SplitMode == entities.SplitAssigned && item.PersonID != nil && *item.PersonID == person
}

func unique(ids []uint) []uint {
	seen := make(map[uint]bool, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func contains(ids []uint, id uint) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}
