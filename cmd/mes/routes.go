package main

import (
	"log/slog"
	"net/http"

	getadmin "bag-mes/http-server/admin/get"
	updateadmin "bag-mes/http-server/admin/update"
	savecut "bag-mes/http-server/cuts/save"
	generate_excel "bag-mes/http-server/generate-report/generate-excel"
	getnotifications "bag-mes/http-server/notifications/get"
	getorder "bag-mes/http-server/orders/get"
	saveorder "bag-mes/http-server/orders/save"
	orderstatus "bag-mes/http-server/orders/status"
	getpo "bag-mes/http-server/production-orders/get"
	savepo "bag-mes/http-server/production-orders/save"
	updatepo "bag-mes/http-server/production-orders/update"
	getroll "bag-mes/http-server/rolls/get"
	saveroll "bag-mes/http-server/rolls/save"
	"bag-mes/http-server/rolls/stage"
	"bag-mes/internal/config"
	"bag-mes/internal/middleware/auth"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"
)

// ProductionAPI — всё, что маршрутам нужно от сервиса производства.
type ProductionAPI interface {
	saveorder.OrderCreator
	getorder.OrderGetter
	orderstatus.StatusChanger
	savepo.ProductionOrderCreator
	getpo.ProductionOrderGetter
	updatepo.ProductionOrderUpdater
	saveroll.RollCreator
	getroll.RollGetter
	stage.RollStager
	savecut.CutCreator
	getadmin.AdminProvider
	updateadmin.AdminUpdater
}

func routes(cfg config.Config, log *slog.Logger, api ProductionAPI, notes getnotifications.NotificationReader, excel generate_excel.GenerateExcelHandler) *chi.Mux {
	router := chi.NewRouter()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	router.Use(corsHandler.Handler)
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)

	// Заказы клиентов
	router.Post("/api/orders", saveorder.CreateOrder(log, api))
	router.Get("/api/orders/{id}", getorder.GetOrder(log, api))
	router.Patch("/api/orders/{id}/status", orderstatus.ChangeOrderStatus(log, api))

	// Производственные заказы
	router.Post("/api/production-orders", savepo.CreateProductionOrder(log, api))
	router.Get("/api/production-orders/{id}", getpo.GetProductionOrder(log, api))
	router.Patch("/api/production-orders/{id}", updatepo.UpdateProductionOrder(log, api))
	router.Get("/api/production-orders/{id}/rolls", getpo.GetRolls(log, api))

	// Рулоны и резка
	router.Post("/api/rolls", saveroll.CreateRoll(log, api))
	router.Get("/api/rolls/{id}", getroll.GetRoll(log, api))
	router.Patch("/api/rolls/{id}/print", stage.PrintRoll(log, api))
	router.Patch("/api/rolls/{id}/cutting", stage.StartCutting(log, api))
	router.Patch("/api/rolls/{id}/complete", stage.CompleteRoll(log, api))
	router.Post("/api/cuts", savecut.CreateCut(log, api))

	router.Get("/api/notifications", getnotifications.GetNotifications(log, notes))
	router.Get("/api/report/excel", generate_excel.GenerateReportExcel(log, excel))

	adminRouter := chi.NewRouter()
	adminRouter.Use(auth.BasicAuth(cfg.AdminLogin, cfg.AdminPass))

	adminRouter.Get("/settings", getadmin.GetSettingsAdmin(log, api))
	adminRouter.Put("/settings", updateadmin.UpdateSettingsAdmin(log, api))
	adminRouter.Get("/machines", getadmin.GetMachinesAdmin(log, api))
	adminRouter.Put("/machines/{id}/status", updateadmin.UpdateMachineStatusAdmin(log, api))

	router.Mount("/api/admin", adminRouter)

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Не найдено", http.StatusNotFound)
	})

	return router
}
