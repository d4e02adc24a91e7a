package router

import (
	"net/http"

	"github.com/talentboard/backend/internal/auth"
	"github.com/talentboard/backend/internal/handlers"
	"github.com/talentboard/backend/internal/jobs"
	"github.com/talentboard/backend/internal/middleware"
	"github.com/talentboard/backend/internal/models"
)

// Deps carries everything the route table needs.
type Deps struct {
	Auth       *auth.Handler
	Credits    *handlers.CreditHandler
	Contacts   *handlers.ContactHandler
	Interviews *handlers.InterviewHandler
	Profiles   *handlers.ProfileHandler
	Jobs       *jobs.Handler
	Validator  middleware.TokenValidator
}

// New returns an http.Handler serving the API under /api/v1.
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	authn := middleware.RequireAuth(d.Validator)
	employer := middleware.RequireRole(models.RoleEmployer)
	jobSeeker := middleware.RequireRole(models.RoleJobSeeker)
	interviewer := middleware.RequireRole(models.RoleInterviewer)
	admin := middleware.RequireRole(models.RoleAdmin)

	handle := func(pattern string, h http.HandlerFunc, mws ...func(http.Handler) http.Handler) {
		var wrapped http.Handler = h
		for i := len(mws) - 1; i >= 0; i-- {
			wrapped = mws[i](wrapped)
		}
		mux.Handle(pattern, wrapped)
	}

	// Public.
	handle("POST /api/v1/auth/register", d.Auth.Register)
	handle("POST /api/v1/auth/login", d.Auth.Login)
	handle("GET /api/v1/verification/{job_seeker_id}", d.Interviews.GetVerification)
	handle("GET /api/v1/jobs", d.Jobs.ListPostings)
	handle("GET /api/v1/jobs/{id}", d.Jobs.GetPosting)

	// Any authenticated user.
	handle("GET /api/v1/credits/balance", d.Credits.GetBalance, authn)
	handle("GET /api/v1/credits/transactions", d.Credits.ListTransactions, authn)
	handle("GET /api/v1/profiles/jobseeker/{user_id}", d.Profiles.GetJobSeeker, authn)
	handle("GET /api/v1/profiles/interviewer/{user_id}", d.Profiles.GetInterviewer, authn)
	handle("GET /api/v1/interviewers", d.Profiles.ListInterviewers, authn)

	// Employers.
	handle("POST /api/v1/contacts/{job_seeker_id}/reveal", d.Contacts.Reveal, authn, employer)
	handle("GET /api/v1/contacts/{job_seeker_id}/access", d.Contacts.CheckAccess, authn, employer)
	handle("GET /api/v1/contacts/my-access", d.Contacts.MyAccess, authn, employer)
	handle("POST /api/v1/jobs", d.Jobs.CreatePosting, authn, employer)
	handle("GET /api/v1/jobs/mine", d.Jobs.MyPostings, authn, employer)
	handle("POST /api/v1/jobs/{id}/close", d.Jobs.ClosePosting, authn, employer)

	// Job seekers.
	handle("POST /api/v1/interviews/requests", d.Interviews.CreateRequest, authn, jobSeeker)
	handle("PUT /api/v1/profiles/jobseeker", d.Profiles.UpsertJobSeeker, authn, jobSeeker)

	// Interviewers.
	handle("GET /api/v1/interviews/requests/available", d.Interviews.ListAvailable, authn, interviewer)
	handle("POST /api/v1/interviews/requests/{id}/accept", d.Interviews.Accept, authn, interviewer)
	handle("POST /api/v1/interviews/requests/{id}/rating", d.Interviews.SubmitRating, authn, interviewer)
	handle("PUT /api/v1/profiles/interviewer", d.Profiles.UpsertInterviewer, authn, interviewer)

	// Shared job seeker / interviewer queue view; the handler branches on role.
	handle("GET /api/v1/interviews/requests/mine", d.Interviews.ListMine, authn)

	// Admin.
	handle("GET /api/v1/admin/settings", d.Credits.GetSettings, authn, admin)
	handle("PATCH /api/v1/admin/settings", d.Credits.UpdateSettings, authn, admin)
	handle("POST /api/v1/admin/credits/add", d.Credits.AdminAddCredits, authn, admin)
	handle("POST /api/v1/admin/credits/deduct", d.Credits.AdminDeductCredits, authn, admin)
	handle("GET /api/v1/admin/credits/transactions", d.Credits.AdminListTransactions, authn, admin)
	handle("GET /api/v1/admin/contact-access", d.Contacts.AdminListAll, authn, admin)
	handle("GET /api/v1/admin/interviews/requests", d.Interviews.AdminListAll, authn, admin)
	handle("PATCH /api/v1/admin/interviews/requests/{id}", d.Interviews.AdminUpdate, authn, admin)

	return mux
}
