// Package book implements a price-sorted collection of resting orders
// for one side of the market.
package book

import "main/internal/model"

// Book keeps orders ascending by price with the convention that a zero
// price (market) sorts after every bounded price. The best sell is the
// front (lowest price), the best buy is the back (highest bounded
// price, or the trailing market entries).
type Book struct {
	orders []model.Order
}

// Insert places the order keeping the book sorted.
func (b *Book) Insert(o model.Order) {
	idx := len(b.orders)
	for i := range b.orders {
		if (o.Price != 0 && b.orders[i].Price > o.Price) || b.orders[i].Price == 0 {
			idx = i
			break
		}
	}
	b.orders = append(b.orders, model.Order{})
	copy(b.orders[idx+1:], b.orders[idx:])
	b.orders[idx] = o
}

// RemoveID deletes the order with the given ID and returns it.
func (b *Book) RemoveID(id int64) (model.Order, bool) {
	for i := range b.orders {
		if b.orders[i].ID == id {
			o := b.orders[i]
			b.orders = append(b.orders[:i], b.orders[i+1:]...)
			return o, true
		}
	}
	return model.Order{}, false
}

// ContainsID reports whether an order with the given ID rests in the book.
func (b *Book) ContainsID(id int64) bool {
	for i := range b.orders {
		if b.orders[i].ID == id {
			return true
		}
	}
	return false
}

// ContainsAmount reports whether an order with a near-equal original
// amount rests in the book. Strategies use it to avoid doubling a
// ladder rung.
func (b *Book) ContainsAmount(amount float64) bool {
	for i := range b.orders {
		if model.Near(b.orders[i].OrigAmount, amount) {
			return true
		}
	}
	return false
}

// Len returns the number of resting orders.
func (b *Book) Len() int {
	return len(b.orders)
}

// Empty reports whether the book holds no orders.
func (b *Book) Empty() bool {
	return len(b.orders) == 0
}

// Front returns a pointer to the lowest-priced order. It stays valid
// only until the next mutation.
func (b *Book) Front() *model.Order {
	return &b.orders[0]
}

// Back returns a pointer to the highest-priced order (or the last
// market entry). It stays valid only until the next mutation.
func (b *Book) Back() *model.Order {
	return &b.orders[len(b.orders)-1]
}

// PopFront removes and returns the lowest-priced order.
func (b *Book) PopFront() model.Order {
	o := b.orders[0]
	b.orders = b.orders[1:]
	return o
}

// PopBack removes and returns the highest-priced order.
func (b *Book) PopBack() model.Order {
	o := b.orders[len(b.orders)-1]
	b.orders = b.orders[:len(b.orders)-1]
	return o
}

// Orders returns a copy of the resting orders in book order.
func (b *Book) Orders() []model.Order {
	out := make([]model.Order, len(b.orders))
	copy(out, b.orders)
	return out
}
