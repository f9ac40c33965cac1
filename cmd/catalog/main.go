package main

import (
	employeehandler "bookline/internal/employees/handler"
	employeerepo "bookline/internal/employees/repository"
	employeeservice "bookline/internal/employees/service"
	employeevalidator "bookline/internal/employees/validator"
	servicehandler "bookline/internal/services/handler"
	servicerepo "bookline/internal/services/repository"
	catalogservice "bookline/internal/services/service"
	servicevalidator "bookline/internal/services/validator"
	"bookline/pkg/app"
	"bookline/pkg/config"
)

const ServiceName = "catalog"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Catalog service")
	catalogSvc, employeeSvc := initServices(cfg)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(
		servicehandler.NewServiceHandler(catalogSvc, cfg.Log),
		employeehandler.NewEmployeeHandler(employeeSvc, cfg.Log),
	)
	serverApp.Run()
}

func initServices(cfg *config.Config) (catalogservice.CatalogService, employeeservice.EmployeeService) {
	catalogSvc := catalogservice.NewCatalogService(
		servicerepo.NewMongoServiceRepository(cfg),
		servicevalidator.NewServiceValidator(),
		cfg,
	)

	employeeSvc := employeeservice.NewEmployeeService(
		employeerepo.NewMongoEmployeeRepository(cfg),
		employeevalidator.NewEmployeeValidator(cfg.Log),
		cfg,
	)

	cfg.Log.Info("Catalog services initialized", "database", cfg.MongoDatabaseName)
	return catalogSvc, employeeSvc
}
