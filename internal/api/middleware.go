// Package api implements the capture service's REST API using chi.
package api

import (
	"context"
	"net/http"
	"strings"
)

type contextKey string

const subjectKey contextKey = "subject"

// Verifier maps a bearer credential to a subject identifier. An empty
// subject or an error means the credential is rejected. The credential is ""
// when the request carried no Authorization header.
type Verifier interface {
	VerifySubject(credential string) (string, error)
}

// StaticVerifier accepts a single shared token and maps it to a fixed
// subject. Suitable for single-tenant deployments.
type StaticVerifier struct {
	Token   string
	Subject string
}

// VerifySubject implements Verifier.
func (v StaticVerifier) VerifySubject(credential string) (string, error) {
	if v.Token == "" || credential != v.Token {
		return "", nil
	}
	return v.Subject, nil
}

// PermissiveVerifier maps every request to a fixed subject without checking
// any credential. Local development only.
type PermissiveVerifier struct {
	Subject string
}

// VerifySubject implements Verifier.
func (v PermissiveVerifier) VerifySubject(string) (string, error) {
	return v.Subject, nil
}

// AuthMiddleware resolves the request's subject from its Bearer credential.
// Requests without a resolvable subject get 401; handlers downstream may
// assume SubjectFrom returns a non-empty id.
func AuthMiddleware(verifier Verifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			credential := ""
			if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
				credential = strings.TrimPrefix(auth, "Bearer ")
			}
			subject, err := verifier.VerifySubject(credential)
			if err != nil || subject == "" {
				writeJSON(w, http.StatusUnauthorized, errorBody("unauthorized"))
				return
			}
			ctx := context.WithValue(r.Context(), subjectKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SubjectFrom returns the authenticated subject id stored by AuthMiddleware.
func SubjectFrom(ctx context.Context) string {
	subject, _ := ctx.Value(subjectKey).(string)
	return subject
}
