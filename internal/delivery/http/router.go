package http

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"calltimes/internal/delivery/http/controllers"
	"calltimes/internal/delivery/http/middleware"
	"calltimes/internal/domain"
)

// NewRouter initializes the HTTP router with all application routes.
func NewRouter(
	verifier domain.TokenVerifier,
	authController *controllers.AuthController,
	projectController *controllers.ProjectController,
	invitationController *controllers.InvitationController,
	contentController *controllers.ContentController,
) *http.ServeMux {
	mux := http.NewServeMux()

	requireAuth := middleware.RequireAuth(verifier)
	optionalAuth := middleware.OptionalAuth(verifier)

	// Auth
	mux.HandleFunc("POST /auth/signup", authController.SignUp)
	mux.HandleFunc("POST /auth/login", authController.Login)
	mux.HandleFunc("GET /auth/me", requireAuth(authController.Me))

	// Projects
	mux.HandleFunc("POST /projects", requireAuth(projectController.Create))
	mux.HandleFunc("GET /projects", requireAuth(projectController.List))
	mux.HandleFunc("GET /projects/{projectID}/members", requireAuth(projectController.ListMembers))

	// Invitations (management, owner-gated in the service)
	mux.HandleFunc("POST /projects/{projectID}/invitations", requireAuth(invitationController.Create))
	mux.HandleFunc("GET /projects/{projectID}/invitations", requireAuth(invitationController.List))
	mux.HandleFunc("DELETE /invitations/{invitationID}", requireAuth(invitationController.Revoke))
	mux.HandleFunc("POST /invitations/{invitationID}/resend", requireAuth(invitationController.Resend))

	// Invitation links. The token is the credential; accept also works for
	// signed-in callers, attaching the invitation to their account.
	mux.HandleFunc("GET /invite/{token}", invitationController.Validate)
	mux.HandleFunc("POST /invite/{token}/accept", optionalAuth(invitationController.Accept))

	// Project content
	mux.HandleFunc("POST /projects/{projectID}/content", requireAuth(contentController.Upload))
	mux.HandleFunc("GET /projects/{projectID}/content", requireAuth(contentController.List))
	mux.HandleFunc("POST /projects/{projectID}/folders", requireAuth(contentController.CreateFolder))
	mux.HandleFunc("PATCH /projects/{projectID}/content/{itemID}", requireAuth(contentController.Rename))
	mux.HandleFunc("DELETE /projects/{projectID}/content/{itemID}", requireAuth(contentController.Delete))
	mux.HandleFunc("GET /projects/{projectID}/content/{itemID}/download", requireAuth(contentController.DownloadURL))

	// Swagger
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}
