package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/gearguard/api/internal/equipment"
	"github.com/gearguard/api/internal/request"
	"github.com/gearguard/api/internal/session"
)

var (
	// ErrUnavailable indica falha de rede: o backend não respondeu.
	// Distinto dos demais erros para que telas de listagem possam
	// renderizar vazias sem alarde, enquanto o fluxo de movimento
	// trata como falha com rollback.
	ErrUnavailable = errors.New("backend indisponível")
)

// APIError carrega o envelope de erro devolvido pela API.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api: %s (%s)", e.Message, e.Code)
}

// Client consome a API REST do GearGuard. Implementa board.Backend e
// session.Authenticator para uso em clientes fora do servidor.
type Client struct {
	baseURL string
	http    *http.Client

	// TokenSource devolve o token corrente; normalmente aponta para
	// (*session.Session).Token.
	TokenSource func() string
}

// New cria um cliente com timeout padrão.
func New(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *APIError       `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, token string, body any, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("%w: resposta ilegível", ErrUnavailable)
	}

	if env.Error != nil {
		return mapAPIError(resp.StatusCode, env.Error)
	}
	if resp.StatusCode >= 400 {
		return mapAPIError(resp.StatusCode, &APIError{Code: "UNKNOWN", Message: resp.Status})
	}

	if out != nil && env.Data != nil {
		return json.Unmarshal(env.Data, out)
	}
	return nil
}

func (c *Client) token() string {
	if c.TokenSource == nil {
		return ""
	}
	return c.TokenSource()
}

func mapAPIError(status int, apiErr *APIError) error {
	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", session.ErrUnauthenticated, apiErr.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", session.ErrForbidden, apiErr.Message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", request.ErrNotFound, apiErr.Message)
	}
	return apiErr
}

type loginResponse struct {
	User         session.Identity `json:"user"`
	AccessToken  string           `json:"access_token"`
	RefreshToken string           `json:"refresh_token"`
}

// Login troca credenciais por identidade e token de acesso.
func (c *Client) Login(ctx context.Context, creds session.Credentials) (session.Identity, string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", "", creds, &out); err != nil {
		return session.Identity{}, "", err
	}
	return out.User, out.AccessToken, nil
}

// CurrentIdentity valida o token persistido no início da execução.
func (c *Client) CurrentIdentity(ctx context.Context, token string) (session.Identity, error) {
	var out session.Identity
	if err := c.do(ctx, http.MethodGet, "/auth/me", token, nil, &out); err != nil {
		return session.Identity{}, err
	}
	return out, nil
}

// FetchRequests lista chamados com os filtros informados.
func (c *Client) FetchRequests(ctx context.Context, filters request.Filters) ([]request.MaintenanceRequest, error) {
	path := "/requests"
	if qs := encodeFilters(filters); qs != "" {
		path += "?" + qs
	}

	var out []request.MaintenanceRequest
	if err := c.do(ctx, http.MethodGet, path, c.token(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchEquipment lista equipamentos com os filtros informados.
func (c *Client) FetchEquipment(ctx context.Context, filters equipment.Filters) ([]equipment.Equipment, error) {
	values := url.Values{}
	if filters.Status != nil {
		values.Set("status", string(*filters.Status))
	}
	if filters.TeamID != nil {
		values.Set("team_id", filters.TeamID.String())
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		values.Set("search", search)
	}

	path := "/equipment"
	if qs := values.Encode(); qs != "" {
		path += "?" + qs
	}

	var out []equipment.Equipment
	if err := c.do(ctx, http.MethodGet, path, c.token(), nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// UpdateRequestStatus persiste a nova raia via atualização parcial.
func (c *Client) UpdateRequestStatus(ctx context.Context, id uuid.UUID, status request.Status) (request.MaintenanceRequest, error) {
	body := map[string]any{"status": status}
	var out request.MaintenanceRequest
	if err := c.do(ctx, http.MethodPatch, "/requests/"+id.String(), c.token(), body, &out); err != nil {
		return request.MaintenanceRequest{}, err
	}
	return out, nil
}

func encodeFilters(filters request.Filters) string {
	values := url.Values{}
	if filters.Status != nil {
		values.Set("status", string(*filters.Status))
	}
	if filters.Type != nil {
		values.Set("type", string(*filters.Type))
	}
	if filters.Priority != nil {
		values.Set("priority", string(*filters.Priority))
	}
	if filters.EquipmentID != nil {
		values.Set("equipment_id", filters.EquipmentID.String())
	}
	if filters.TeamID != nil {
		values.Set("team_id", filters.TeamID.String())
	}
	if filters.AssignedToID != nil {
		values.Set("assigned_to_id", filters.AssignedToID.String())
	}
	if filters.RequestedByID != nil {
		values.Set("requested_by_id", filters.RequestedByID.String())
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		values.Set("search", search)
	}
	if filters.StartDate != nil {
		values.Set("start_date", filters.StartDate.Format("2006-01-02"))
	}
	if filters.EndDate != nil {
		values.Set("end_date", filters.EndDate.Format("2006-01-02"))
	}
	return values.Encode()
}
