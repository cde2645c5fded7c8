package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// GoogleCalendarConfig holds the OAuth2 configuration for the
// restaurant calendar integration.
type GoogleCalendarConfig struct {
	Config *oauth2.Config
}

// InitGoogleCalendarConfig builds the OAuth2 config from env, or nil
// when the integration is not configured.
func InitGoogleCalendarConfig() *GoogleCalendarConfig {
	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	redirectURL := os.Getenv("GOOGLE_REDIRECT_URL")

	if clientID == "" || clientSecret == "" || redirectURL == "" {
		return nil
	}

	return &GoogleCalendarConfig{Config: &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  redirectURL,
		Scopes: []string{
			calendar.CalendarEventsScope,
		},
		Endpoint: google.Endpoint,
	}}
}

// GoogleAuthHandler starts the OAuth2 flow for the staff account that
// owns the restaurant calendar.
func (a *App) GoogleAuthHandler(c *gin.Context) {
	cfg := InitGoogleCalendarConfig()
	if cfg == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	state := fmt.Sprintf("staff_%d", time.Now().Unix())
	url := cfg.Config.AuthCodeURL(state, oauth2.AccessTypeOffline)
	c.JSON(http.StatusOK, gin.H{"auth_url": url, "state": state})
}

// GoogleOAuth2CallbackHandler exchanges the authorization code for a
// token. The token is returned to the caller; it travels back on later
// requests in the X-Google-Token header.
func (a *App) GoogleOAuth2CallbackHandler(c *gin.Context) {
	cfg := InitGoogleCalendarConfig()
	if cfg == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Google Calendar not configured"})
		return
	}

	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "authorization code required"})
		return
	}

	token, err := cfg.Config.Exchange(c.Request.Context(), code)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to exchange code for token"})
		return
	}

	tokenJSON, _ := json.Marshal(token)
	c.JSON(http.StatusOK, gin.H{
		"message": "Authorization successful",
		"state":   c.Query("state"),
		"token":   string(tokenJSON),
	})
}

func tokenFromRequest(c *gin.Context) (*oauth2.Token, bool) {
	raw := c.GetHeader("X-Google-Token")
	if raw == "" {
		return nil, false
	}
	var token oauth2.Token
	if err := json.Unmarshal([]byte(raw), &token); err != nil {
		return nil, false
	}
	return &token, true
}

func calendarService(ctx context.Context, token *oauth2.Token) (*calendar.Service, error) {
	cfg := InitGoogleCalendarConfig()
	if cfg == nil {
		return nil, fmt.Errorf("google calendar not configured")
	}
	client := cfg.Config.Client(ctx, token)
	return calendar.NewService(ctx, option.WithHTTPClient(client))
}

// syncReservationEvent mirrors a confirmed reservation into the
// restaurant calendar so staff see it alongside their own events.
func (a *App) syncReservationEvent(ctx context.Context, token *oauth2.Token, r Reservation) error {
	srv, err := calendarService(ctx, token)
	if err != nil {
		return err
	}

	start, err := reservationStart(r)
	if err != nil {
		return err
	}
	end := start.Add(time.Duration(r.Duration * float64(time.Hour)))

	calendarID := os.Getenv("GOOGLE_CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}

	event := &calendar.Event{
		Summary:     fmt.Sprintf("Table %d reservation (%d people)", r.Table, r.People),
		Description: fmt.Sprintf("Phone: %s\nAddress: %s", r.Phone, r.Address),
		Start:       &calendar.EventDateTime{DateTime: start.Format(time.RFC3339)},
		End:         &calendar.EventDateTime{DateTime: end.Format(time.RFC3339)},
	}
	_, err = srv.Events.Insert(calendarID, event).Context(ctx).Do()
	return err
}

func reservationStart(r Reservation) (time.Time, error) {
	return time.ParseInLocation(dateLayout+" 15:04", r.Date+" "+r.Hour, time.Local)
}

// GetCalendarEventsHandler lists upcoming restaurant calendar events,
// for the staff dashboard.
func (a *App) GetCalendarEventsHandler(c *gin.Context) {
	token, ok := tokenFromRequest(c)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Google token required in X-Google-Token header"})
		return
	}

	srv, err := calendarService(c.Request.Context(), token)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	calendarID := os.Getenv("GOOGLE_CALENDAR_ID")
	if calendarID == "" {
		calendarID = "primary"
	}

	call := srv.Events.List(calendarID).
		SingleEvents(true).
		OrderBy("startTime").
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(250)
	events, err := call.Do()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": fmt.Sprintf("failed to retrieve events: %v", err)})
		return
	}

	type eventView struct {
		ID      string `json:"id"`
		Summary string `json:"summary"`
		Start   string `json:"start"`
		End     string `json:"end"`
		Status  string `json:"status"`
	}
	var out []eventView
	for _, item := range events.Items {
		v := eventView{ID: item.Id, Summary: item.Summary, Status: item.Status}
		if item.Start != nil {
			v.Start = item.Start.DateTime
			if v.Start == "" {
				v.Start = item.Start.Date
			}
		}
		if item.End != nil {
			v.End = item.End.DateTime
			if v.End == "" {
				v.End = item.End.Date
			}
		}
		out = append(out, v)
	}

	c.JSON(http.StatusOK, gin.H{"events": out, "count": len(out)})
}
