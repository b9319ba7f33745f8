package usecase

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"foodcourt/internal/apperr"
	"foodcourt/internal/domain/model"
	"foodcourt/internal/notify"
	repo "foodcourt/internal/repository"
)

type OrderUsecase struct {
	tx     repo.TransactionManager
	orders repo.OrderRepository
	items  repo.OrderItemRepository
	locks  Locker
	pub    Publisher
	clock  Clock
	ids    IDGenerator
}

func NewOrderUsecase(
	tx repo.TransactionManager,
	orders repo.OrderRepository,
	items repo.OrderItemRepository,
	locks Locker,
	pub Publisher,
	clock Clock,
	ids IDGenerator,
) *OrderUsecase {
	return &OrderUsecase{tx: tx, orders: orders, items: items, locks: locks, pub: pub, clock: clock, ids: ids}
}

type SubmitOrderItem struct {
	MenuItemName string `json:"menu_item_name"`
	Quantity     int64  `json:"quantity"`
	UnitPrice    int64  `json:"unit_price"`
}

type SubmitOrderInput struct {
	TenantID     int64             `json:"tenant_id"`
	TableCode    string            `json:"table_code"`
	CustomerName string            `json:"customer_name"`
	Items        []SubmitOrderItem `json:"items"`
}

func validateSubmit(in SubmitOrderInput) error {
	const op = "order.submit"
	if in.TenantID <= 0 {
		return apperr.New(apperr.KindValidation, op, "tenant_id must be positive")
	}
	if len(in.Items) == 0 {
		return apperr.New(apperr.KindValidation, op, "order needs at least one item")
	}
	var total int64
	for i, it := range in.Items {
		idx := strconv.Itoa(i)
		if strings.TrimSpace(it.MenuItemName) == "" {
			return apperr.New(apperr.KindValidation, op, "menu_item_name is required").With("item", idx)
		}
		if it.Quantity <= 0 {
			return apperr.New(apperr.KindValidation, op, "quantity must be positive").With("item", idx)
		}
		if it.UnitPrice <= 0 {
			return apperr.New(apperr.KindValidation, op, "unit_price must be positive").With("item", idx)
		}
		if it.Quantity > math.MaxInt64/it.UnitPrice || total > math.MaxInt64-it.Quantity*it.UnitPrice {
			return apperr.New(apperr.KindValidation, op, "order total is too large").With("item", idx)
		}
		total += it.Quantity * it.UnitPrice
	}
	return nil
}

func (u *OrderUsecase) newOrderNumber() string {
	id := strings.ToUpper(strings.ReplaceAll(u.ids.NewID(), "-", ""))
	if len(id) > 8 {
		id = id[:8]
	}
	return "ORD-" + u.clock.Now().Format("20060102") + "-" + id
}

// Submit は注文を作る。合計は明細から計算し直す。
func (u *OrderUsecase) Submit(ctx context.Context, in SubmitOrderInput) (model.Order, error) {
	if err := validateSubmit(in); err != nil {
		return model.Order{}, err
	}

	now := u.clock.Now()
	o := model.Order{
		TenantID:      in.TenantID,
		OrderNumber:   u.newOrderNumber(),
		TableCode:     strings.TrimSpace(in.TableCode),
		CustomerName:  strings.TrimSpace(in.CustomerName),
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		Version:       1,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	items := make([]model.OrderItem, 0, len(in.Items))
	for _, it := range in.Items {
		sub := it.Quantity * it.UnitPrice
		o.TotalAmount += sub
		items = append(items, model.OrderItem{
			MenuItemName: strings.TrimSpace(it.MenuItemName),
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     sub,
			CreatedAt:    now,
		})
	}

	err := u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		if err := r.Orders().Create(ctx, &o); err != nil {
			return err
		}
		for i := range items {
			items[i].OrderID = o.ID
		}
		return r.OrderItems().CreateBulk(ctx, items)
	})
	if err != nil {
		return model.Order{}, storageErr("order.submit", err)
	}
	o.Items = items

	ev := orderEvent(notify.TypeOrderSubmitted, o, now)
	ev.Data = map[string]any{"total_amount": o.TotalAmount, "table_code": o.TableCode}
	publishOrder(u.pub, ev, 0)
	return o, nil
}

// Transition はイベントを1つ適用する。同じ注文への遷移は順番に処理される。
func (u *OrderUsecase) Transition(ctx context.Context, actorID, orderID int64, ev model.OrderEvent) (model.Order, error) {
	unlock, err := u.locks.Lock(ctx, orderKey(orderID))
	if err != nil {
		return model.Order{}, err
	}
	defer unlock()

	now := u.clock.Now()
	var before, after model.Order
	err = u.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		cur, err := r.Orders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		next, err := cur.Apply(ev, now)
		if err != nil {
			return err
		}
		if next.Version, err = r.Orders().Update(ctx, next); err != nil {
			return err
		}
		if ev == model.EventCancel {
			if err := writeOrderAudit(ctx, r, actorID, cur, next); err != nil {
				return err
			}
		}
		before, after = cur, next
		return nil
	})
	if err != nil {
		return model.Order{}, storageErr("order.transition", err)
	}

	out := orderEvent(notify.TypeOrderTransition, after, now)
	out.Data = map[string]any{"event": string(ev), "from": string(before.Status)}
	publishOrder(u.pub, out, 0)
	return after, nil
}

func writeOrderAudit(ctx context.Context, r repo.TxRepos, actorID int64, before, after model.Order) error {
	b, _ := json.Marshal(map[string]string{"status": string(before.Status), "payment_status": string(before.PaymentStatus)})
	a, _ := json.Marshal(map[string]string{"status": string(after.Status), "payment_status": string(after.PaymentStatus)})
	return r.AuditLogs().Create(ctx, model.AuditLog{
		ActorUserID:  actorID,
		Action:       model.AuditActionCancelOrder,
		ResourceType: model.AuditResourceOrder,
		ResourceID:   strconv.FormatInt(after.ID, 10),
		BeforeJSON:   string(b),
		AfterJSON:    string(a),
		CreatedAt:    after.UpdatedAt,
	})
}

func (u *OrderUsecase) Get(ctx context.Context, orderID int64) (model.Order, error) {
	o, err := u.orders.FindByID(ctx, orderID)
	if err != nil {
		return model.Order{}, storageErr("order.get", err)
	}
	items, err := u.items.ListByOrderID(ctx, orderID)
	if err != nil {
		return model.Order{}, storageErr("order.get", err)
	}
	o.Items = items
	return o, nil
}

// GetByNumber は表示板やレシートの注文番号から引く
func (u *OrderUsecase) GetByNumber(ctx context.Context, number string) (model.Order, error) {
	number = strings.TrimSpace(number)
	if number == "" {
		return model.Order{}, apperr.New(apperr.KindValidation, "order.get", "order number is required")
	}
	o, err := u.orders.FindByNumber(ctx, number)
	if err != nil {
		return model.Order{}, storageErr("order.get", err)
	}
	return u.Get(ctx, o.ID)
}

func (u *OrderUsecase) List(ctx context.Context, f repo.OrderListFilter) ([]model.Order, error) {
	if f.Status != "" {
		switch model.OrderStatus(f.Status) {
		case model.OrderStatusPending, model.OrderStatusConfirmed, model.OrderStatusPreparing,
			model.OrderStatusReady, model.OrderStatusCompleted, model.OrderStatusCancelled:
		default:
			return nil, apperr.Newf(apperr.KindValidation, "order.list", "unknown status %q", f.Status)
		}
	}
	if f.From != nil && f.To != nil && f.From.After(*f.To) {
		return nil, apperr.New(apperr.KindValidation, "order.list", "from must not be after to")
	}
	out, err := u.orders.List(ctx, f)
	if err != nil {
		return nil, storageErr("order.list", err)
	}
	return out, nil
}
