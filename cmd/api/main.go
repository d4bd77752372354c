package main

import (
	"fmt"
	"net/http"

	"github.com/memento-hq/funeraria-backend-go/internal/config"
	appHTTP "github.com/memento-hq/funeraria-backend-go/internal/handler/http"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/database"
	"github.com/memento-hq/funeraria-backend-go/internal/pkg/jwt"
	"github.com/memento-hq/funeraria-backend-go/internal/repository/postgresql"
	bookingService "github.com/memento-hq/funeraria-backend-go/internal/service/booking"
	payrollService "github.com/memento-hq/funeraria-backend-go/internal/service/payroll"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Error loading config:", err)
		return
	}

	dsn := cfg.DatabaseURL()
	db, err := database.NewPostgreSQLDB(dsn)
	if err != nil {
		fmt.Println("Error connecting to database:", err)
		return
	}

	collaboratorRepo := postgresql.NewCollaboratorRepository(db)
	assignmentRepo := postgresql.NewAssignmentRepository(db)
	payrollRepo := postgresql.NewPayrollRepository(db)
	bookingRepo := postgresql.NewBookingRepository(db)

	jwtService := jwt.NewJWTService(cfg.JWT.Secret, cfg.JWT.AccessExpiration)
	payrollSvc := payrollService.NewPayrollService(payrollRepo, collaboratorRepo, assignmentRepo)
	bookingSvc := bookingService.NewBookingService(bookingRepo)

	payrollHandler := appHTTP.NewPayrollHandler(payrollSvc)
	collaboratorHandler := appHTTP.NewCollaboratorHandler(collaboratorRepo, assignmentRepo)
	bookingHandler := appHTTP.NewBookingHandler(bookingSvc)

	router := appHTTP.NewRouter(
		jwtService,
		payrollHandler,
		collaboratorHandler,
		bookingHandler,
	)

	port := fmt.Sprintf(":%d", cfg.App.Port)
	fmt.Printf("Server running at http://localhost%s\n", port)
	if err := http.ListenAndServe(port, router); err != nil {
		fmt.Println("Server error:", err)
	}
}
