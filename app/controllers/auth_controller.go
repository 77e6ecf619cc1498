package controllers

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"yatube/app/auth"
	"yatube/app/errs"
	"yatube/app/models"
	"yatube/app/services"
	"yatube/app/views"

	"go.uber.org/zap"
)

const msgBadLogin = "Please enter a correct username and password. Note that both fields may be case-sensitive."

type formField struct {
	Name  string
	Label string
	Type  string
	Value string
	Error string
}

type signupPage struct {
	views.Base
	Fields []formField
}

type loginPage struct {
	views.Base
	Form   *models.LoginForm
	Errors map[string]string
	Next   string
}

// AuthController handles signup, login and logout
type AuthController struct {
	base
	users    *services.UserService
	sessions *auth.Sessions
}

// NewAuthController creates a new AuthController
func NewAuthController(svc *services.Services, sessions *auth.Sessions, v *views.Renderer, log *zap.Logger) *AuthController {
	return &AuthController{
		base:     base{views: v, log: log},
		users:    svc.Users,
		sessions: sessions,
	}
}

// SignupForm displays the registration form
func (ac *AuthController) SignupForm(w http.ResponseWriter, r *http.Request) {
	ac.renderSignup(w, r, &models.SignupForm{}, nil)
}

// Signup registers a user and logs them in
func (ac *AuthController) Signup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := &models.SignupForm{
		Username:  r.PostFormValue("username"),
		FirstName: r.PostFormValue("first_name"),
		LastName:  r.PostFormValue("last_name"),
		Email:     r.PostFormValue("email"),
		Phone:     r.PostFormValue("phone"),
		Password1: r.PostFormValue("password1"),
		Password2: r.PostFormValue("password2"),
	}
	user, err := ac.users.Register(form)
	if formErrors, ok := fieldErrors(err); ok {
		ac.renderSignup(w, r, form, formErrors)
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if err := ac.sessions.Issue(w, user); err != nil {
		ac.fail(w, r, err)
		return
	}
	ac.log.Info("user registered", zap.String("username", user.Username))
	http.Redirect(w, r, "/", http.StatusFound)
}

// LoginForm displays the login form
func (ac *AuthController) LoginForm(w http.ResponseWriter, r *http.Request) {
	ac.renderLogin(w, r, &models.LoginForm{}, nil, r.URL.Query().Get("next"))
}

// Login checks credentials, starts a session and follows next when
// it points inside the site.
func (ac *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	form := &models.LoginForm{
		Username: r.PostFormValue("username"),
		Password: r.PostFormValue("password"),
	}
	next := r.FormValue("next")

	user, err := ac.users.Authenticate(form)
	if errors.Is(err, errs.InvalidCredentials) {
		ac.renderLogin(w, r, form, map[string]string{"": msgBadLogin}, next)
		return
	}
	if formErrors, ok := fieldErrors(err); ok {
		ac.renderLogin(w, r, form, formErrors, next)
		return
	}
	if err != nil {
		ac.fail(w, r, err)
		return
	}
	if err := ac.sessions.Issue(w, user); err != nil {
		ac.fail(w, r, err)
		return
	}
	http.Redirect(w, r, safeNext(next), http.StatusFound)
}

// Logout ends the session. Tokens issued to the user before are
// revoked too, so a copied cookie stops working.
func (ac *AuthController) Logout(w http.ResponseWriter, r *http.Request) {
	if viewer := auth.GetUser(r.Context()); viewer != nil {
		if err := ac.users.EndSessions(viewer.ID); err != nil {
			ac.fail(w, r, err)
			return
		}
	}
	ac.sessions.Clear(w)
	ac.render(w, r, http.StatusOK, "logged_out", views.Base{Title: "Logged out"})
}

func (ac *AuthController) renderSignup(w http.ResponseWriter, r *http.Request, form *models.SignupForm, formErrors map[string]string) {
	fields := []formField{
		{Name: "first_name", Label: "First name", Type: "text", Value: form.FirstName},
		{Name: "last_name", Label: "Last name", Type: "text", Value: form.LastName},
		{Name: "username", Label: "Username", Type: "text", Value: form.Username},
		{Name: "email", Label: "Email address", Type: "email", Value: form.Email},
		{Name: "phone", Label: "Phone", Type: "tel", Value: form.Phone},
		{Name: "password1", Label: "Password", Type: "password"},
		{Name: "password2", Label: "Password confirmation", Type: "password"},
	}
	for i := range fields {
		fields[i].Error = formErrors[fields[i].Name]
	}
	ac.render(w, r, http.StatusOK, "signup", signupPage{ac.page(r, "Sign up"), fields})
}

func (ac *AuthController) renderLogin(w http.ResponseWriter, r *http.Request, form *models.LoginForm, formErrors map[string]string, next string) {
	ac.render(w, r, http.StatusOK, "login", loginPage{
		Base:   ac.page(r, "Log in"),
		Form:   form,
		Errors: formErrors,
		Next:   next,
	})
}

// safeNext keeps redirects on this site.
func safeNext(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return "/"
	}
	return next
}
