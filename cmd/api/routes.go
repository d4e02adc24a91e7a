package main

import (
	"log/slog"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/talentboard/backend/internal/auth"
	"github.com/talentboard/backend/internal/handlers"
	"github.com/talentboard/backend/internal/jobs"
	"github.com/talentboard/backend/internal/repository"
	"github.com/talentboard/backend/internal/router"
	"github.com/talentboard/backend/internal/services"
)

// buildAPI wires repositories, services, and handlers into the route table.
// The notify insert func is a late-bound closure because the river client
// does not exist yet when services are constructed.
func buildAPI(
	pool *pgxpool.Pool,
	validator *services.Validator,
	insertNotify services.InsertNotifyTxFunc,
	logger *slog.Logger,
) http.Handler {
	userRepo := repository.NewUserRepo(pool)
	txRepo := repository.NewTransactionRepo(pool)
	settingsRepo := repository.NewSettingsRepo(pool)
	contactRepo := repository.NewContactRepo(pool)
	interviewRepo := repository.NewInterviewRepo(pool)
	ratingRepo := repository.NewRatingRepo(pool)
	profileRepo := repository.NewProfileRepo(pool)

	engine := services.NewCreditEngine(userRepo, txRepo)
	matcher := services.NewMatcher(profileRepo)
	contactSvc := services.NewContactService(pool, engine, userRepo, contactRepo, profileRepo, settingsRepo)
	interviewSvc := services.NewInterviewService(pool, engine, interviewRepo, ratingRepo, userRepo, profileRepo, matcher, settingsRepo, insertNotify)
	adminSvc := services.NewAdminCreditService(pool, engine)

	authSvc := auth.NewService(pool, userRepo, engine, settingsRepo)

	return router.New(router.Deps{
		Auth: auth.NewHandler(authSvc, logger),
		Credits: &handlers.CreditHandler{
			Users:        userRepo,
			Transactions: txRepo,
			Admin:        adminSvc,
			Settings:     settingsRepo,
			Logger:       logger,
		},
		Contacts: &handlers.ContactHandler{
			Svc:      contactSvc,
			Contacts: contactRepo,
			Logger:   logger,
		},
		Interviews: &handlers.InterviewHandler{
			Svc:      interviewSvc,
			Requests: interviewRepo,
			Logger:   logger,
		},
		Profiles: &handlers.ProfileHandler{
			Profiles:  profileRepo,
			Users:     userRepo,
			Validator: validator,
			Logger:    logger,
		},
		Jobs:      jobs.NewHandler(jobs.NewRepository(pool), logger),
		Validator: authSvc,
	})
}
