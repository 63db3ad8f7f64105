//go:build integration

package testutil

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Token signs an access token for userID.
func (env *TestEnv) Token(userID string) string {
	env.t.Helper()
	tok, err := env.JWTMgr.GenerateToken(userID, userID+"@agency.test")
	if err != nil {
		env.t.Fatalf("Token: %v", err)
	}
	return tok
}

// CreateOrganization creates an organization owned by ownerID and returns its ID.
func (env *TestEnv) CreateOrganization(ownerID, name string) string {
	env.t.Helper()
	resp := env.Do(http.MethodPost, "/api/organizations", map[string]string{"name": name}, env.Token(ownerID))
	AssertStatus(env.t, resp, http.StatusCreated)

	var org struct {
		ID string `json:"id"`
	}
	DecodeJSON(env.t, resp, &org)
	return org.ID
}

// Join invites userID into the owner's organization with role and accepts it.
func (env *TestEnv) Join(ownerID, userID, role string) {
	env.t.Helper()
	resp := env.Do(http.MethodPost, "/api/invitations",
		map[string]string{"email": userID + "@agency.test", "role": role}, env.Token(ownerID))
	AssertStatus(env.t, resp, http.StatusCreated)

	var inv struct {
		Token string `json:"token"`
	}
	DecodeJSON(env.t, resp, &inv)

	resp = env.Do(http.MethodPost, "/invitations/"+inv.Token+"/accept", nil, env.Token(userID))
	defer resp.Body.Close()
	AssertStatus(env.t, resp, http.StatusOK)
}

// Do sends a JSON request with an optional bearer token.
func (env *TestEnv) Do(method, path string, body any, token string) *http.Response {
	env.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			env.t.Fatalf("%s %s: encode: %v", method, path, err)
		}
	}
	req, err := http.NewRequest(method, env.Server.URL+path, &buf)
	if err != nil {
		env.t.Fatalf("%s %s: new request: %v", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		env.t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

// GET performs an unauthenticated GET request.
func (env *TestEnv) GET(path string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, "")
}

// AuthGET performs an authenticated GET request as userID.
func (env *TestEnv) AuthGET(path, userID string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodGet, path, nil, env.Token(userID))
}

// AuthPOST performs an authenticated POST request as userID.
func (env *TestEnv) AuthPOST(path string, body any, userID string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPost, path, body, env.Token(userID))
}

// AuthPATCH performs an authenticated PATCH request as userID.
func (env *TestEnv) AuthPATCH(path string, body any, userID string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodPatch, path, body, env.Token(userID))
}

// AuthDELETE performs an authenticated DELETE request as userID.
func (env *TestEnv) AuthDELETE(path, userID string) *http.Response {
	env.t.Helper()
	return env.Do(http.MethodDelete, path, nil, env.Token(userID))
}
