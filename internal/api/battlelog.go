package api

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"
)

const baseURL = "https://battlelog.battlefield.com/bf4"

// BattlelogClient talks to the battlelog report endpoints.
type BattlelogClient struct {
	client *fasthttp.Client
}

func NewBattlelogClient() *BattlelogClient {
	return &BattlelogClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
	}
}

func (c *BattlelogClient) GetBattleReport(ctx context.Context, reportID string) (*ReportResponse, error) {
	url := fmt.Sprintf("%s/battlereport/loadgeneralreport/%s/1/", baseURL, reportID)
	return doRequest[ReportResponse](ctx, c, url)
}

func (c *BattlelogClient) GetPlayerReport(ctx context.Context, reportID, personaID string) (*PlayerReportResponse, error) {
	url := fmt.Sprintf("%s/battlereport/loadplayerreport/%s/1/%s/", baseURL, reportID, personaID)
	return doRequest[PlayerReportResponse](ctx, c, url)
}

func (c *BattlelogClient) GetMoreReports(ctx context.Context, personaID, timestamp string) (*MoreReportsResponse, error) {
	url := fmt.Sprintf("%s/warsawbattlereportspopulatemore/%s/%s/1/", baseURL, personaID, timestamp)
	return doRequest[MoreReportsResponse](ctx, c, url)
}

func (c *BattlelogClient) GetUsersByPersonaIDs(ctx context.Context, personaIDs []string) ([]UserResult, error) {
	url := fmt.Sprintf("%s/user/getUsersByPersonaIds/?personaIds=%s", baseURL, strings.Join(personaIDs, ","))
	resp, err := doRequest[usersResponse](ctx, c, url)
	if err != nil {
		return nil, err
	}
	results := make([]UserResult, 0, len(resp.Data))
	for id, user := range resp.Data {
		// The response keys its data map by persona id; the value does not
		// always repeat it.
		if user.PersonaID == "" {
			user.PersonaID = id
		}
		results = append(results, user)
	}
	return results, nil
}

func doRequest[T any](ctx context.Context, client *BattlelogClient, url string) (*T, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("X-AjaxNavigation", "1")

	deadline, ok := ctx.Deadline()
	if ok {
		if err := client.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := client.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

type usersResponse struct {
	Data map[string]UserResult `json:"data"`
}
