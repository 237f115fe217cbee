package app

import (
	"net/http"
	"strings"

	"github.com/garyellow/calmmate-go/internal/chat"
	"github.com/garyellow/calmmate-go/internal/contacts"
	domerrors "github.com/garyellow/calmmate-go/internal/errors"
	"github.com/garyellow/calmmate-go/internal/genai"
	"github.com/gin-gonic/gin"
)

var (
	registerErrors = domerrors.NewWrapper("accounts", "register")
	loginErrors    = domerrors.NewWrapper("accounts", "login")
	campusErrors   = domerrors.NewWrapper("university", "resources")
	studentErrors  = domerrors.NewWrapper("university", "login")
)

type historyTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Message string        `json:"message"`
	History []historyTurn `json:"history"`
}

type chatResponse struct {
	AIResponse       string   `json:"ai_response"`
	SeriousnessLevel string   `json:"seriousness_level"`
	Suggestions      string   `json:"suggestions"`
	SuggestionList   []string `json:"suggestion_list"`
	ReplySource      string   `json:"reply_source"`
}

// toTurns maps client history onto model turns. Browsers send the
// assistant side as "assistant", "model", "ai" or "bot".
func toTurns(history []historyTurn) []genai.Turn {
	turns := make([]genai.Turn, 0, len(history))
	for _, h := range history {
		role := genai.Role(strings.ToLower(strings.TrimSpace(h.Role)))
		switch role {
		case genai.RoleUser, genai.RoleAssistant:
		case "model", "ai", "bot":
			role = genai.RoleAssistant
		default:
			continue
		}
		turns = append(turns, genai.Turn{Role: role, Content: h.Content})
	}
	return turns
}

func (a *Application) handleChat(c *gin.Context) {
	var req chatRequest
	if !a.bindJSON(c, &req) {
		return
	}

	resp, err := a.chat.Respond(c.Request.Context(), chat.Request{
		Message: req.Message,
		History: toTurns(req.History),
	})
	if err != nil {
		a.writeError(c, err, "Failed to get AI response.")
		return
	}

	c.JSON(http.StatusOK, chatResponse{
		AIResponse:       resp.Reply,
		SeriousnessLevel: resp.Severity.String(),
		Suggestions:      resp.FormattedSuggestions,
		SuggestionList:   resp.Suggestions,
		ReplySource:      string(resp.ReplySource),
	})
}

type contactsRequest struct {
	Country  string `json:"country"`
	City     string `json:"city"`
	Category string `json:"category"`
}

func (a *Application) handleContacts(c *gin.Context) {
	var req contactsRequest
	if !a.bindJSON(c, &req) {
		return
	}

	res, err := a.contacts.Lookup(req.Country, req.City, req.Category)
	if err != nil {
		a.writeError(c, err, "Failed to retrieve contacts.")
		return
	}
	a.metrics.RecordContactLookup(string(res.Match))

	c.JSON(http.StatusOK, gin.H{
		"contacts_markdown": contacts.Format(res.Records, res.Label()),
		"contacts":          res.Records,
		"location":          res.Label(),
		"match":             res.Match,
	})
}

func (a *Application) handleContactSearch(c *gin.Context) {
	query := c.Query("q")
	hits, err := a.contacts.Search(query, c.Query("category"))
	if err != nil {
		a.writeError(c, err, "Failed to search contacts.")
		return
	}
	a.metrics.RecordContactSearch(len(hits))

	c.JSON(http.StatusOK, gin.H{
		"contacts_markdown": contacts.FormatSearch(hits, strings.TrimSpace(query)),
		"contacts":          hits,
		"count":             len(hits),
	})
}

func (a *Application) handleCountries(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"countries": a.contacts.Countries()})
}

func (a *Application) handleCities(c *gin.Context) {
	country := a.contacts.Normalize(c.Param("country"), "", "").Country
	c.JSON(http.StatusOK, gin.H{
		"country": country,
		"cities":  a.contacts.Cities(c.Param("country")),
	})
}

type universityRequest struct {
	UniversityName string `json:"university_name"`
}

func (a *Application) handleUniversityResources(c *gin.Context) {
	var req universityRequest
	if !a.bindJSON(c, &req) {
		return
	}

	match, err := a.universities.Resources(req.UniversityName)
	if domerrors.IsNotFound(err) {
		err = campusErrors.Wrap(err, "University not found or no resources available.")
	}
	if err != nil {
		a.writeError(c, err, "Failed to retrieve university resources.")
		return
	}

	c.JSON(http.StatusOK, match)
}

type studentLoginRequest struct {
	UniversityName string `json:"university_name"`
	StudentID      string `json:"student_id"`
	Password       string `json:"password"`
}

func (a *Application) handleUniversityLogin(c *gin.Context) {
	var req studentLoginRequest
	if !a.bindJSON(c, &req) {
		return
	}

	profile, err := a.universities.Authenticate(c.Request.Context(), req.UniversityName, req.StudentID, req.Password)
	if err != nil {
		a.metrics.RecordAuth("student", authStatus(err))
		if domerrors.IsUnauthorized(err) {
			// The reason is logged, never returned.
			a.logger.WithError(err).WarnContext(c.Request.Context(), "Student login rejected")
			err = studentErrors.Wrap(err, "Invalid university, student ID, or password.")
		}
		a.writeError(c, err, "Login failed.")
		return
	}
	a.metrics.RecordAuth("student", "ok")

	c.JSON(http.StatusOK, gin.H{"success": true, "profile": profile})
}

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

func (a *Application) handleRegister(c *gin.Context) {
	var req registerRequest
	if !a.bindJSON(c, &req) {
		return
	}

	user, err := a.db.CreateUser(c.Request.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		a.metrics.RecordAuth("register", authStatus(err))
		if domerrors.IsAlreadyExists(err) {
			err = registerErrors.Wrap(err, "Email already registered")
		}
		a.writeError(c, err, "Registration failed.")
		return
	}
	a.metrics.RecordAuth("register", "ok")

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Registration successful!",
		"user":    user,
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (a *Application) handleLogin(c *gin.Context) {
	var req loginRequest
	if !a.bindJSON(c, &req) {
		return
	}

	user, err := a.db.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		a.metrics.RecordAuth("login", authStatus(err))
		if domerrors.IsUnauthorized(err) {
			err = loginErrors.Wrap(err, "Invalid email or password")
		}
		a.writeError(c, err, "Login failed.")
		return
	}
	a.metrics.RecordAuth("login", "ok")

	c.JSON(http.StatusOK, gin.H{"success": true, "user": user})
}

// authStatus is the metrics label for a failed auth attempt.
func authStatus(err error) string {
	switch {
	case domerrors.IsInvalidInput(err):
		return "invalid"
	case domerrors.IsUnauthorized(err):
		return "denied"
	case domerrors.IsAlreadyExists(err):
		return "conflict"
	default:
		return "error"
	}
}
