package save

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bag-mes/internal/apperr"
	"bag-mes/internal/service"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockCreator struct {
	mock.Mock
}

func (m *MockCreator) CreateProductionOrder(ctx context.Context, in service.CreateProductionOrderInput) (*storage.ProductionOrder, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*storage.ProductionOrder), args.Error(1)
}

func post(creator ProductionOrderCreator, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/production-orders", strings.NewReader(body))
	rr := httptest.NewRecorder()
	CreateProductionOrder(slog.New(slog.NewTextHandler(io.Discard, nil)), creator).ServeHTTP(rr, req)
	return rr
}

func TestCreateProductionOrder_Success(t *testing.T) {
	creator := new(MockCreator)
	creator.On("CreateProductionOrder", mock.Anything, mock.MatchedBy(func(in service.CreateProductionOrderInput) bool {
		return in.OrderID == 1 && in.ProductID == 2 && in.QuantityKg.Equal(decimal.NewFromInt(1000))
	})).Return(&storage.ProductionOrder{
		ID:              7,
		QuantityKg:      decimal.NewFromInt(1000),
		FinalQuantityKg: decimal.NewFromInt(1200),
		Status:          storage.POStatusPending,
	}, nil)

	rr := post(creator, `{"order_id": 1, "product_id": 2, "quantity_kg": 1000, "overrun_percentage": 0}`)

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), `"id":7`)
	creator.AssertExpectations(t)
}

func TestCreateProductionOrder_MissingIDs(t *testing.T) {
	creator := new(MockCreator)

	rr := post(creator, `{"quantity_kg": 1000}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	creator.AssertNotCalled(t, "CreateProductionOrder", mock.Anything, mock.Anything)
}

func TestCreateProductionOrder_UnknownPunching(t *testing.T) {
	creator := new(MockCreator)
	creator.On("CreateProductionOrder", mock.Anything, mock.Anything).Return(nil, apperr.UnknownProductType("Zip"))

	rr := post(creator, `{"order_id": 1, "product_id": 2, "quantity_kg": 1000}`)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), "UnknownProductType")
}
