package cart

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/threadlinehq/threadline-backend/pkg/errors"
	"github.com/threadlinehq/threadline-backend/pkg/logger"
)

// LineItem is one product variant inside a cart.
type LineItem struct {
	ProductID  uuid.UUID       `json:"product_id"`
	Title      string          `json:"title"`
	Size       string          `json:"size"`
	Color      string          `json:"color"`
	SleeveType *string         `json:"sleeve_type,omitempty"`
	Quantity   int             `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
}

// variantKey identifies a line for merging on add: product, size, color and
// sleeve type all have to match for quantities to combine.
func (li LineItem) variantKey() string {
	sleeve := ""
	if li.SleeveType != nil {
		sleeve = *li.SleeveType
	}
	return fmt.Sprintf("%s|%s|%s|%s", li.ProductID, li.Size, li.Color, sleeve)
}

// matchKey identifies a line for removal and quantity updates. Sleeve type is
// deliberately left out: those operations act on every sleeve variant of the
// same product/size/color at once.
func (li LineItem) matchKey() string {
	return fmt.Sprintf("%s|%s|%s", li.ProductID, li.Size, li.Color)
}

// LineTotal returns price multiplied by quantity.
func (li LineItem) LineTotal() decimal.Decimal {
	return li.Price.Mul(decimal.NewFromInt(int64(li.Quantity)))
}

// State is the full cart for one customer.
type State struct {
	Items []LineItem `json:"items"`
}

// Total sums the line totals across the cart.
func (s State) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.LineTotal())
	}
	return total
}

// ItemCount sums the quantities across the cart.
func (s State) ItemCount() int {
	count := 0
	for _, item := range s.Items {
		count += item.Quantity
	}
	return count
}

// IsEmpty reports whether the cart holds no lines.
func (s State) IsEmpty() bool {
	return len(s.Items) == 0
}

// Store applies cart operations against a Storage backend. Reads and writes
// are not transactional across customers hitting the same cart concurrently;
// the last writer wins.
type Store struct {
	storage Storage
	logg    *logger.Logger
}

// NewStore wires the cart store.
func NewStore(storage Storage, logg *logger.Logger) (*Store, error) {
	if storage == nil {
		return nil, stderrors.New("cart: storage is required")
	}
	if logg == nil {
		return nil, stderrors.New("cart: logger is required")
	}
	return &Store{storage: storage, logg: logg}, nil
}

// Get loads the customer's cart. Missing or corrupt snapshots hydrate to an
// empty cart; corrupt ones are also purged so the bad payload never
// resurfaces.
func (s *Store) Get(ctx context.Context, customerID string) (State, error) {
	if customerID == "" {
		return State{}, errors.New(errors.CodeValidation, "customer id is required")
	}
	raw, err := s.storage.Get(ctx, customerID)
	if err != nil {
		return State{}, errors.Wrap(errors.CodeDependency, err, "loading cart")
	}
	if raw == "" {
		return State{}, nil
	}
	var state State
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		s.logg.Warn(s.logg.WithCustomerID(ctx, customerID), "discarding corrupt cart snapshot")
		if delErr := s.storage.Del(ctx, customerID); delErr != nil {
			s.logg.Error(ctx, "purging corrupt cart snapshot", delErr)
		}
		return State{}, nil
	}
	return state, nil
}

// Add merges the item into the cart, combining quantities when the exact
// variant already exists.
func (s *Store) Add(ctx context.Context, customerID string, item LineItem) (State, error) {
	if item.ProductID == uuid.Nil {
		return State{}, errors.New(errors.CodeValidation, "product id is required")
	}
	if item.Quantity <= 0 {
		return State{}, errors.New(errors.CodeValidation, "quantity must be positive")
	}
	if item.Price.IsNegative() {
		return State{}, errors.New(errors.CodeValidation, "price must not be negative")
	}

	state, err := s.Get(ctx, customerID)
	if err != nil {
		return State{}, err
	}

	merged := false
	key := item.variantKey()
	for i := range state.Items {
		if state.Items[i].variantKey() == key {
			state.Items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		state.Items = append(state.Items, item)
	}

	s.persist(ctx, customerID, state)
	return state, nil
}

// Remove drops every line matching product, size and color.
func (s *Store) Remove(ctx context.Context, customerID string, productID uuid.UUID, size, color string) (State, error) {
	state, err := s.Get(ctx, customerID)
	if err != nil {
		return State{}, err
	}

	key := fmt.Sprintf("%s|%s|%s", productID, size, color)
	kept := state.Items[:0]
	for _, item := range state.Items {
		if item.matchKey() != key {
			kept = append(kept, item)
		}
	}
	state.Items = kept

	s.persist(ctx, customerID, state)
	return state, nil
}

// UpdateQuantity sets the quantity on matching lines. A quantity of zero or
// below removes them instead. Lines that do not exist are never created.
func (s *Store) UpdateQuantity(ctx context.Context, customerID string, productID uuid.UUID, size, color string, quantity int) (State, error) {
	if quantity <= 0 {
		return s.Remove(ctx, customerID, productID, size, color)
	}

	state, err := s.Get(ctx, customerID)
	if err != nil {
		return State{}, err
	}

	key := fmt.Sprintf("%s|%s|%s", productID, size, color)
	for i := range state.Items {
		if state.Items[i].matchKey() == key {
			state.Items[i].Quantity = quantity
		}
	}

	s.persist(ctx, customerID, state)
	return state, nil
}

// Clear empties the customer's cart.
func (s *Store) Clear(ctx context.Context, customerID string) error {
	if customerID == "" {
		return errors.New(errors.CodeValidation, "customer id is required")
	}
	if err := s.storage.Del(ctx, customerID); err != nil {
		return errors.Wrap(errors.CodeDependency, err, "clearing cart")
	}
	return nil
}

// persist writes the snapshot back. Write failures are logged and swallowed:
// the in-memory state the caller already holds stays authoritative for the
// response, and the next successful write repairs the stored copy.
func (s *Store) persist(ctx context.Context, customerID string, state State) {
	raw, err := json.Marshal(state)
	if err != nil {
		s.logg.Error(s.logg.WithCustomerID(ctx, customerID), "serializing cart snapshot", err)
		return
	}
	if err := s.storage.Set(ctx, customerID, string(raw)); err != nil {
		s.logg.Error(s.logg.WithCustomerID(ctx, customerID), "persisting cart snapshot", err)
	}
}
