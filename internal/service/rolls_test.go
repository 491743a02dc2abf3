package service

import (
	"context"
	"errors"
	"testing"

	"bag-mes/internal/apperr"
	"bag-mes/internal/constants"
	"bag-mes/internal/service/notify"
	"bag-mes/internal/storage"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var defaultSettings = storage.Settings{
	OverrunTolerancePercent: d("3"),
	AllowLastRollOverrun:    true,
	WasteTolerancePercent:   d("5"),
}

func productionOrder(produced string) storage.ProductionOrder {
	return storage.ProductionOrder{
		ID:                7,
		OrderID:           1,
		QuantityKg:        d("1000"),
		FinalQuantityKg:   d("1030"),
		OverrunPercentage: d("3"),
		Status:            storage.POStatusInProduction,
		ProducedWeightKg:  d(produced),
		CutWeightKg:       decimal.Zero,
		RequiresPrinting:  true,
	}
}

func filmMachine(status string) *storage.Machine {
	return &storage.Machine{ID: 3, Name: "EXT-1", Section: constants.SectionFilm, Status: status}
}

func cutter(status string) *storage.Machine {
	return &storage.Machine{ID: 9, Name: "CUT-1", Section: constants.SectionCutting, Status: status}
}

func cuttingSnapshot(r storage.Roll, po storage.ProductionOrder) storage.RollSnapshot {
	machineID := int64(9)
	r.CuttingMachineID = &machineID
	return storage.RollSnapshot{
		Roll:            r,
		ProductionOrder: po,
		Settings:        defaultSettings,
		Rolls:           storage.RollCounts{Total: 1, Open: 1, HasLast: r.IsLastRoll},
		CuttingMachine:  cutter(constants.MachineActive),
	}
}

func TestCreateRoll_RemainingExceeded(t *testing.T) {
	svc, st, notes := newTestService()
	po := productionOrder("1020")

	st.On("GetMachine", mock.Anything, int64(3)).Return(filmMachine(constants.MachineActive), nil)
	st.On("GetProductionOrder", mock.Anything, int64(7)).Return(&po, nil)
	st.On("CreateRoll", mock.Anything, mock.Anything).Return(storage.ProductionSnapshot{ProductionOrder: po, Settings: defaultSettings}, nil)
	notes.On("SaveNotification", mock.Anything, mock.MatchedBy(func(n storage.Notification) bool {
		return n.Kind == notify.KindOverrunRejected && n.EntityID == 7
	})).Return(nil)

	_, err := svc.CreateRoll(context.Background(), CreateRollInput{
		ProductionOrderID: 7, WeightKg: d("15"), CreatedBy: 11, FilmMachineID: 3,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrRemainingQuantityExceeded))

	details, ok := apperr.Details(err)
	require.True(t, ok)
	assert.Equal(t, "10.00", details.Remaining.StringFixed(2))
	assert.Nil(t, st.SavedProductionOrder)
	notes.AssertExpectations(t)
}

func TestCreateRoll_LastRollAccepted(t *testing.T) {
	svc, st, _ := newTestService()
	po := productionOrder("1020")

	st.On("GetMachine", mock.Anything, int64(3)).Return(filmMachine(constants.MachineActive), nil)
	st.On("GetProductionOrder", mock.Anything, int64(7)).Return(&po, nil)
	st.On("CreateRoll", mock.Anything, mock.MatchedBy(func(r storage.NewRoll) bool {
		return r.IsLastRoll && r.WeightKg.Equal(d("15"))
	})).Return(storage.ProductionSnapshot{ProductionOrder: po, Settings: defaultSettings}, nil)

	r, err := svc.CreateRoll(context.Background(), CreateRollInput{
		ProductionOrderID: 7, WeightKg: d("15"), IsLastRoll: true, CreatedBy: 11, FilmMachineID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, storage.StageFilm, r.Stage)

	require.NotNil(t, st.SavedProductionOrder)
	assert.Equal(t, "1035.00", st.SavedProductionOrder.ProducedWeightKg.StringFixed(2))
}

func TestCreateRoll_FirstRollStartsProduction(t *testing.T) {
	svc, st, _ := newTestService()
	po := productionOrder("0")
	po.Status = storage.POStatusPending

	st.On("GetMachine", mock.Anything, int64(3)).Return(filmMachine(constants.MachineActive), nil)
	st.On("GetProductionOrder", mock.Anything, int64(7)).Return(&po, nil)
	st.On("CreateRoll", mock.Anything, mock.Anything).Return(storage.ProductionSnapshot{ProductionOrder: po, Settings: defaultSettings}, nil)

	_, err := svc.CreateRoll(context.Background(), CreateRollInput{
		ProductionOrderID: 7, WeightKg: d("120.4567"), CreatedBy: 11, FilmMachineID: 3,
	})
	require.NoError(t, err)
	assert.Equal(t, storage.POStatusInProduction, st.SavedProductionOrder.Status)
	assert.Equal(t, "120.457", st.SavedProductionOrder.ProducedWeightKg.String())
}

func TestCreateRoll_MachineInMaintenance(t *testing.T) {
	svc, st, _ := newTestService()
	po := productionOrder("0")

	st.On("GetMachine", mock.Anything, int64(3)).Return(filmMachine(constants.MachineMaintenance), nil)
	st.On("GetProductionOrder", mock.Anything, int64(7)).Return(&po, nil)

	_, err := svc.CreateRoll(context.Background(), CreateRollInput{
		ProductionOrderID: 7, WeightKg: d("10"), CreatedBy: 11, FilmMachineID: 3,
	})
	assert.True(t, errors.Is(err, apperr.ErrMachineInactive))
	st.AssertNotCalled(t, "CreateRoll", mock.Anything, mock.Anything)
}

func TestCreateRoll_ProductionOrderNotFound(t *testing.T) {
	svc, st, _ := newTestService()

	st.On("GetMachine", mock.Anything, int64(3)).Return(filmMachine(constants.MachineActive), nil)
	st.On("GetProductionOrder", mock.Anything, int64(99)).Return(nil, apperr.NotFound("производственный заказ id=%d", 99))

	_, err := svc.CreateRoll(context.Background(), CreateRollInput{ProductionOrderID: 99, WeightKg: d("10"), FilmMachineID: 3})
	assert.True(t, apperr.IsNotFound(err))
}

func TestPrintRoll(t *testing.T) {
	svc, st, _ := newTestService()
	po := productionOrder("100")
	roll := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageFilm, WeightKg: d("100")}

	st.On("GetMachine", mock.Anything, int64(8)).Return(&storage.Machine{ID: 8, Section: constants.SectionPrinting, Status: constants.MachineActive}, nil)
	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(storage.RollSnapshot{Roll: roll, ProductionOrder: po, Settings: defaultSettings}, nil)

	r, err := svc.PrintRoll(context.Background(), StageInput{RollID: 5, MachineID: 8, By: 2})
	require.NoError(t, err)
	assert.Equal(t, storage.StagePrinting, r.Stage)
	assert.Equal(t, int64(2), *r.PrintedBy)
	assert.NotNil(t, r.PrintedAt)
}

func TestStartCutting_PrintingRequired(t *testing.T) {
	svc, st, _ := newTestService()
	po := productionOrder("100")
	roll := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageFilm, WeightKg: d("100")}

	st.On("GetMachine", mock.Anything, int64(9)).Return(&storage.Machine{ID: 9, Section: constants.SectionCutting, Status: constants.MachineActive}, nil)
	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(storage.RollSnapshot{Roll: roll, ProductionOrder: po, Settings: defaultSettings}, nil)

	_, err := svc.StartCutting(context.Background(), StageInput{RollID: 5, MachineID: 9, By: 2})
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))
	details, _ := apperr.Details(err)
	assert.Equal(t, []string{storage.StagePrinting}, details.Allowed)
}

func TestCompleteRoll_LastRollCompletesProductionOrder(t *testing.T) {
	svc, st, notes := newTestService()
	po := productionOrder("1030")
	po.CutWeightKg = d("1000")
	roll := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("98"), IsLastRoll: true}

	snap := cuttingSnapshot(roll, po)
	snap.Rolls = storage.RollCounts{Total: 11, Open: 1, HasLast: true}
	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(snap, nil)
	notes.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)

	r, err := svc.CompleteRoll(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, storage.StageDone, r.Stage)
	assert.Equal(t, "2.00", r.WasteKg.StringFixed(2))

	assert.Equal(t, storage.POStatusCompleted, st.SavedProductionOrder.Status)
	assert.Equal(t, "97.09", st.SavedProductionOrder.CompletionPercent.StringFixed(2))

	notes.AssertNumberOfCalls(t, "SaveNotification", 2)
}

func TestCompleteRoll_NotEnoughCut(t *testing.T) {
	svc, st, notes := newTestService()
	roll := storage.Roll{ID: 5, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("50")}

	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(cuttingSnapshot(roll, productionOrder("100")), nil)

	_, err := svc.CompleteRoll(context.Background(), 5)
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	notes.AssertNotCalled(t, "SaveNotification", mock.Anything, mock.Anything)
}

func TestCompleteRoll_ConcurrentStageChange(t *testing.T) {
	svc, st, _ := newTestService()
	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(nil, apperr.Conflict("рулон id=%d уже изменён", 5))

	_, err := svc.CompleteRoll(context.Background(), 5)
	assert.True(t, apperr.IsConflict(err))
}

func TestCreateCut(t *testing.T) {
	svc, st, _ := newTestService()
	po := productionOrder("200")
	po.FinalQuantityKg = d("200")
	po.CutWeightKg = d("40")
	roll := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("40")}

	st.On("CreateCut", mock.Anything, mock.Anything).Return(cuttingSnapshot(roll, po), nil)

	cut, err := svc.CreateCut(context.Background(), CreateCutInput{RollID: 5, CutWeightKg: d("60"), Pieces: 1200, PerformedBy: 4})
	require.NoError(t, err)
	assert.Equal(t, 1200, cut.Pieces)

	assert.Equal(t, "100.00", st.SavedRoll.CutWeightTotalKg.StringFixed(2))
	assert.Equal(t, "100.00", st.SavedProductionOrder.CutWeightKg.StringFixed(2))
	assert.Equal(t, "50.00", st.SavedProductionOrder.CompletionPercent.StringFixed(2))
}

func TestCreateCut_Rejections(t *testing.T) {
	svc, st, _ := newTestService()

	_, err := svc.CreateCut(context.Background(), CreateCutInput{RollID: 5, CutWeightKg: decimal.Zero})
	assert.True(t, errors.Is(err, apperr.ErrInvalidInput))
	st.AssertNotCalled(t, "CreateCut", mock.Anything, mock.Anything)

	roll := storage.Roll{ID: 5, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("95")}
	st.On("CreateCut", mock.Anything, mock.Anything).Return(cuttingSnapshot(roll, productionOrder("100")), nil)

	_, err = svc.CreateCut(context.Background(), CreateCutInput{RollID: 5, CutWeightKg: d("6")})
	assert.True(t, errors.Is(err, apperr.ErrRemainingQuantityExceeded))
	assert.Nil(t, st.SavedRoll)
}

func TestCompleteRoll_LastRollWithOpenSiblings(t *testing.T) {
	svc, st, notes := newTestService()
	roll := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("98"), IsLastRoll: true}

	snap := cuttingSnapshot(roll, productionOrder("1030"))
	snap.Rolls = storage.RollCounts{Total: 11, Open: 3, HasLast: true}
	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(snap, nil)
	notes.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)

	r, err := svc.CompleteRoll(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, storage.StageDone, r.Stage)
	assert.Equal(t, storage.POStatusInProduction, st.SavedProductionOrder.Status)
	notes.AssertNumberOfCalls(t, "SaveNotification", 1)
}

func TestCompleteRoll_LastOpenSiblingCompletesProductionOrder(t *testing.T) {
	svc, st, notes := newTestService()
	roll := storage.Roll{ID: 4, ProductionOrderID: 7, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("100")}

	snap := cuttingSnapshot(roll, productionOrder("1030"))
	snap.Rolls = storage.RollCounts{Total: 11, Open: 1, HasLast: true}
	st.On("AdvanceRoll", mock.Anything, int64(4)).Return(snap, nil)
	notes.On("SaveNotification", mock.Anything, mock.Anything).Return(nil)

	_, err := svc.CompleteRoll(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, storage.POStatusCompleted, st.SavedProductionOrder.Status)
}

func TestCuttingMachineInMaintenance(t *testing.T) {
	svc, st, notes := newTestService()
	roll := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("98")}

	snap := cuttingSnapshot(roll, productionOrder("100"))
	snap.CuttingMachine = cutter(constants.MachineMaintenance)
	st.On("AdvanceRoll", mock.Anything, int64(5)).Return(snap, nil)
	st.On("CreateCut", mock.Anything, mock.Anything).Return(snap, nil)

	_, err := svc.CompleteRoll(context.Background(), 5)
	assert.True(t, errors.Is(err, apperr.ErrMachineInactive))

	_, err = svc.CreateCut(context.Background(), CreateCutInput{RollID: 5, CutWeightKg: d("1")})
	assert.True(t, errors.Is(err, apperr.ErrMachineInactive))

	assert.Nil(t, st.SavedRoll)
	notes.AssertNotCalled(t, "SaveNotification", mock.Anything, mock.Anything)
}

func TestClosedProductionOrderRejectsRollWork(t *testing.T) {
	for _, status := range []string{storage.POStatusCancelled, storage.POStatusCompleted} {
		t.Run(status, func(t *testing.T) {
			svc, st, _ := newTestService()
			po := productionOrder("100")
			po.Status = status

			cutting := storage.Roll{ID: 5, ProductionOrderID: 7, Stage: storage.StageCutting, WeightKg: d("100"), CutWeightTotalKg: d("96")}
			st.On("CreateCut", mock.Anything, mock.Anything).Return(cuttingSnapshot(cutting, po), nil)
			st.On("AdvanceRoll", mock.Anything, int64(5)).Return(cuttingSnapshot(cutting, po), nil)

			film := storage.Roll{ID: 6, ProductionOrderID: 7, Stage: storage.StageFilm, WeightKg: d("100")}
			st.On("GetMachine", mock.Anything, int64(8)).Return(&storage.Machine{ID: 8, Section: constants.SectionPrinting, Status: constants.MachineActive}, nil)
			st.On("AdvanceRoll", mock.Anything, int64(6)).Return(storage.RollSnapshot{Roll: film, ProductionOrder: po, Settings: defaultSettings}, nil)

			_, err := svc.CreateCut(context.Background(), CreateCutInput{RollID: 5, CutWeightKg: d("2")})
			assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

			_, err = svc.CompleteRoll(context.Background(), 5)
			assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

			_, err = svc.PrintRoll(context.Background(), StageInput{RollID: 6, MachineID: 8, By: 2})
			assert.True(t, errors.Is(err, apperr.ErrInvalidTransition))

			assert.Nil(t, st.SavedRoll)
			assert.Nil(t, st.SavedProductionOrder)
		})
	}
}
