package controllers

import (
	"net/http/httptest"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/event"

	"github.com/voltvest/voltvest_backend/middleware"
)

// newAdminContext builds an echo context carrying admin claims, the way the
// JWT middleware leaves them after authentication.
func newAdminContext(method, adminID, paramID string, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()

	r := httptest.NewRequest(method, "/", strings.NewReader(body))
	if body != "" {
		r.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()

	c := e.NewContext(r, rec)
	if paramID != "" {
		c.SetParamNames("id")
		c.SetParamValues(paramID)
	}
	c.Set("user", &jwt.Token{Claims: &middleware.JwtCustomClaims{
		UserID:   adminID,
		Email:    "admin@voltvest.io",
		UserType: "admin",
	}})
	return c, rec
}

// updateCommands returns the update commands issued against a collection, in
// order, each as the first entry of the command's "updates" array.
func updateCommands(events []*event.CommandStartedEvent, collection string) []bson.Raw {
	var out []bson.Raw
	for _, evt := range events {
		if evt.CommandName != "update" {
			continue
		}
		if evt.Command.Lookup("update").StringValue() != collection {
			continue
		}
		vals, err := evt.Command.Lookup("updates").Array().Values()
		if err != nil || len(vals) == 0 {
			continue
		}
		out = append(out, vals[0].Document())
	}
	return out
}

// countCommands counts started commands by name, optionally scoped to one
// collection (the command's first element names the collection).
func countCommands(events []*event.CommandStartedEvent, name, collection string) int {
	n := 0
	for _, evt := range events {
		if evt.CommandName != name {
			continue
		}
		if collection != "" && evt.Command.Lookup(name).StringValue() != collection {
			continue
		}
		n++
	}
	return n
}
