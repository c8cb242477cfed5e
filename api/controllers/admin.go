package controllers

import (
	"net/http"

	"github.com/digikraal/ledgerview/api/responses"
	"github.com/digikraal/ledgerview/api/validators"
	"github.com/digikraal/ledgerview/internal/auth"
	"github.com/digikraal/ledgerview/pkg/logger"
)

// AdminProvisionUser creates an account of any role, including an
// investor's committed capital.
func AdminProvisionUser(reg auth.RegisterService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if reg == nil {
			responses.WriteError(ctx, logg, w, unavailable("registration service"))
			return
		}

		var body auth.ProvisionRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		user, err := reg.Provision(ctx, body)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}

		if logg != nil {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"provisioned_user_id": user.ID.String(),
				"provisioned_role":    string(user.Role),
			}), "auth.user_provisioned")
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, user)
	}
}
