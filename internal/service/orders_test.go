package service

import (
	"context"
	"errors"
	"testing"

	"bag-mes/internal/apperr"
	"bag-mes/internal/service/notify"
	"bag-mes/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateOrder_ComputesOverrunPerLine(t *testing.T) {
	svc, st, _ := newTestService()

	st.On("GetProduct", mock.Anything, int64(1)).Return(&storage.Product{ID: 1, Name: "Майка 30x60", Punching: "T-Shirt", RequiresPrinting: true}, nil)
	st.On("GetProduct", mock.Anything, int64(2)).Return(&storage.Product{ID: 2, Name: "Пакет банан", Punching: "Banana"}, nil)
	st.On("CreateOrder", mock.Anything, mock.MatchedBy(func(req storage.NewOrder) bool {
		if len(req.Lines) != 2 || req.CustomerID != 5 {
			return false
		}
		return req.Lines[0].FinalQuantityKg.Equal(d("600")) &&
			req.Lines[0].RequiresPrinting &&
			req.Lines[1].FinalQuantityKg.Equal(d("110")) &&
			req.Lines[1].OverrunPercentage.Equal(d("10"))
	})).Return(&storage.Order{ID: 1, CustomerID: 5, Status: storage.OrderPending}, nil)

	order, err := svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 5,
		Lines: []OrderLineInput{
			{ProductID: 1, QuantityKg: d("500")},
			{ProductID: 2, QuantityKg: d("100")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, storage.OrderPending, order.Status)
	st.AssertExpectations(t)
}

func TestCreateOrder_Validation(t *testing.T) {
	svc, st, _ := newTestService()

	_, err := svc.CreateOrder(context.Background(), CreateOrderInput{CustomerID: 5})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Contains(t, err.Error(), "service.CreateOrder")

	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{Lines: []OrderLineInput{{ProductID: 1, QuantityKg: d("10")}}})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	assert.Contains(t, err.Error(), "service.CreateOrder")

	st.On("GetProduct", mock.Anything, int64(1)).Return(&storage.Product{ID: 1, Punching: "None"}, nil)
	_, err = svc.CreateOrder(context.Background(), CreateOrderInput{
		CustomerID: 5,
		Lines:      []OrderLineInput{{ProductID: 1, QuantityKg: d("0")}},
	})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	st.AssertNotCalled(t, "CreateOrder", mock.Anything, mock.Anything)
}

func TestChangeOrderStatus_CompletedBlockedByProduction(t *testing.T) {
	svc, st, notes := newTestService()

	st.On("UpdateOrderStatus", mock.Anything, int64(1)).Return(storage.Order{
		ID:     1,
		Status: storage.OrderInProduction,
		ProductionOrders: []storage.ProductionOrderSummary{
			{ID: 10, Status: storage.POStatusCompleted},
			{ID: 11, Status: storage.POStatusInProgress},
		},
	}, nil)

	_, err := svc.ChangeOrderStatus(context.Background(), 1, storage.OrderCompleted)
	require.True(t, errors.Is(err, apperr.ErrInvalidTransition))

	details, _ := apperr.Details(err)
	assert.Equal(t, []int64{11}, details.Blocking)
	notes.AssertNotCalled(t, "SaveNotification", mock.Anything, mock.Anything)
}

func TestChangeOrderStatus_Success(t *testing.T) {
	svc, st, notes := newTestService()

	st.On("UpdateOrderStatus", mock.Anything, int64(1)).Return(storage.Order{ID: 1, Status: storage.OrderPending}, nil)
	notes.On("SaveNotification", mock.Anything, mock.MatchedBy(func(n storage.Notification) bool {
		return n.Kind == notify.KindOrderStatusChanged
	})).Return(nil)

	change, err := svc.ChangeOrderStatus(context.Background(), 1, storage.OrderWaiting)
	require.NoError(t, err)
	assert.Equal(t, storage.OrderPending, change.PreviousStatus)
	assert.Equal(t, storage.OrderWaiting, change.Status)
	notes.AssertExpectations(t)
}

func TestChangeOrderStatus_SameStatusNoop(t *testing.T) {
	svc, st, notes := newTestService()

	st.On("UpdateOrderStatus", mock.Anything, int64(1)).Return(storage.Order{
		ID:               1,
		Status:           storage.OrderCompleted,
		ProductionOrders: []storage.ProductionOrderSummary{{ID: 3, Status: storage.POStatusInProgress}},
	}, nil)

	change, err := svc.ChangeOrderStatus(context.Background(), 1, storage.OrderCompleted)
	require.NoError(t, err)
	assert.Equal(t, change.PreviousStatus, change.Status)
	notes.AssertNotCalled(t, "SaveNotification", mock.Anything, mock.Anything)
}
