// internal/app/features/enrollments/helpers.go
package enrollments

import (
	"net/http"

	"github.com/Thomas-Sedhom/LMS/internal/app/system/apperr"
	sysauth "github.com/Thomas-Sedhom/LMS/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func urlObjectID(r *http.Request, param string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, param))
	if err != nil {
		return primitive.NilObjectID, apperr.BadRequest("invalid " + param)
	}
	return id, nil
}

func currentUserID(r *http.Request) (primitive.ObjectID, error) {
	user, ok := sysauth.CurrentUser(r)
	if !ok {
		return primitive.NilObjectID, apperr.Unauthorized("not signed in")
	}
	id, err := primitive.ObjectIDFromHex(user.ID)
	if err != nil {
		return primitive.NilObjectID, apperr.Unauthorized("invalid session")
	}
	return id, nil
}
