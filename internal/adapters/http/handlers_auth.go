package web

import (
	"errors"
	"net/http"
	"strings"

	"schoolhub/internal/application/orchestrators"
	accountDomain "schoolhub/internal/domain/account"
)

// tokenResponse is returned by login and register.
type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Role        string `json:"role"`
}

func (s *server) writeToken(w http.ResponseWriter, status int, res orchestrators.AuthResult) {
	writeJSON(w, status, tokenResponse{
		AccessToken: res.Token,
		TokenType:   "bearer",
		ExpiresIn:   int(s.Tokens.TTL().Seconds()),
		Role:        res.Account.Role,
	})
}

func (s *server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		FullName string `json:"full_name"`
		Role     string `json:"role"`
	}
	if isJSON(r) {
		if !decodeJSONBody(w, r, &body) {
			return
		}
	} else {
		body.Email = deref(formString(r, "email"))
		body.Password = deref(formString(r, "password"))
		body.FullName = deref(formString(r, "full_name"))
		body.Role = deref(formString(r, "role"))
	}

	res, err := orchestrators.ExecuteRegisterAccount(r.Context(), orchestrators.RegisterAccountInput{
		Email:    body.Email,
		Password: body.Password,
		FullName: body.FullName,
		Role:     body.Role,
	}, orchestrators.RegisterAccountDeps{
		AccountStore: s.Stores.AccountStore,
		Tokens:       s.Tokens,
		GenerateID:   s.GenerateID,
		Now:          s.Now,
	})
	if err != nil {
		writeError(w, err, subject{Email: body.Email})
		return
	}
	s.writeToken(w, http.StatusCreated, res)
}

// handleLogin accepts an OAuth2 password form (username, password) or a JSON body (email, password).
func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if isJSON(r) {
		if !decodeJSONBody(w, r, &body) {
			return
		}
	} else {
		body.Username = deref(formString(r, "username"))
		body.Email = deref(formString(r, "email"))
		body.Password = deref(formString(r, "password"))
	}
	login := strings.TrimSpace(body.Email)
	if login == "" {
		login = strings.TrimSpace(body.Username)
	}
	if login == "" || body.Password == "" {
		writeDetail(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	res, err := orchestrators.ExecuteLogin(r.Context(), orchestrators.LoginInput{
		Email:    login,
		Password: body.Password,
	}, orchestrators.LoginDeps{
		AccountStore: s.Stores.AccountStore,
		Tokens:       s.Tokens,
		Now:          s.Now,
	})
	if err != nil {
		writeError(w, err, subject{Email: login})
		return
	}
	s.writeToken(w, http.StatusOK, res)
}

// meResponse describes the signed-in account.
type meResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

func (s *server) handleMe(w http.ResponseWriter, r *http.Request) {
	sess := session(r)
	acct, err := s.Stores.AccountStore.GetByID(r.Context(), sess.AccountID)
	if errors.Is(err, accountDomain.ErrNotFound) {
		// The token outlived its account.
		writeDetail(w, http.StatusUnauthorized, "Not authenticated")
		return
	}
	if err != nil {
		internalError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{
		ID:       acct.ID,
		Email:    acct.Email,
		FullName: acct.FullName,
		Role:     acct.Role,
	})
}
