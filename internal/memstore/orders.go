package memstore

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"cadre-be/internal/order"
	"cadre-be/internal/utils"
)

type orderRepo struct {
	st  *state
	now func() time.Time
}

func cloneOrder(o *order.Order) *order.Order {
	c := *o
	c.Items = make([]*order.OrderItem, len(o.Items))
	for i, item := range o.Items {
		ci := *item
		c.Items[i] = &ci
	}
	return &c
}

func (r *orderRepo) NextID(_ context.Context) (string, error) {
	r.st.seq++
	return utils.FormatOrderID(r.st.seq), nil
}

func (r *orderRepo) Create(_ context.Context, o *order.Order) error {
	if _, ok := r.st.orders[o.ID]; ok {
		return fmt.Errorf("order %s already exists", o.ID)
	}
	now := r.now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	r.st.orders[o.ID] = cloneOrder(o)
	return nil
}

func (r *orderRepo) Get(_ context.Context, id string) (*order.Order, error) {
	o, ok := r.st.orders[id]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	return cloneOrder(o), nil
}

func (r *orderRepo) GetForUpdate(ctx context.Context, id string) (*order.Order, error) {
	return r.Get(ctx, id)
}

func (r *orderRepo) List(_ context.Context, filter order.ListFilter) ([]*order.Order, error) {
	filter = filter.Normalize()
	search := strings.ToLower(filter.Search)

	matched := []*order.Order{}
	for _, o := range r.st.orders {
		if filter.CustomerUserID != "" && o.Customer.UserID != filter.CustomerUserID {
			continue
		}
		if filter.Status != nil && o.Status != *filter.Status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(o.ID), search) &&
			!strings.Contains(strings.ToLower(o.Customer.Name), search) &&
			!strings.Contains(strings.ToLower(o.Customer.Email), search) {
			continue
		}
		matched = append(matched, o)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	start := min(filter.Offset(), len(matched))
	end := min(start+filter.Limit, len(matched))

	page := make([]*order.Order, 0, end-start)
	for _, o := range matched[start:end] {
		page = append(page, cloneOrder(o))
	}
	return page, nil
}

func (r *orderRepo) Update(_ context.Context, o *order.Order) error {
	stored, ok := r.st.orders[o.ID]
	if !ok {
		return order.ErrOrderNotFound
	}
	stored.Status = o.Status
	stored.TotalPrice = o.TotalPrice
	stored.CadreProfit = o.CadreProfit
	stored.UpdatedAt = r.now().UTC()
	o.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *orderRepo) UpdateItem(_ context.Context, orderID string, item *order.OrderItem) error {
	stored, ok := r.st.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	existing, _ := stored.FindItem(item.ID)
	if existing == nil {
		return order.ErrItemNotFound
	}
	existing.Quantity = item.Quantity
	existing.Profit = item.Profit
	existing.StatusChecks = item.StatusChecks
	return nil
}

func (r *orderRepo) DeleteItem(_ context.Context, orderID, itemID string) error {
	stored, ok := r.st.orders[orderID]
	if !ok {
		return order.ErrOrderNotFound
	}
	_, idx := stored.FindItem(itemID)
	if idx < 0 {
		return order.ErrItemNotFound
	}
	stored.Items = append(stored.Items[:idx], stored.Items[idx+1:]...)
	return nil
}

func (r *orderRepo) Delete(_ context.Context, id string) error {
	if _, ok := r.st.orders[id]; !ok {
		return order.ErrOrderNotFound
	}
	delete(r.st.orders, id)
	return nil
}
