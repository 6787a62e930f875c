package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"time"
	"valorant-analytics/internal/constants"
)

type Account struct {
	Puuid        string
	Name         string
	Tag          string
	Region       string
	AccountLevel int
	Card         string
	Title        string
}

type MatchSummary struct {
	MatchID   string
	MapName   string
	Mode      string
	StartedAt time.Time
}

type Rank struct {
	Tier     int
	TierName string
	RR       int
	Elo      int
}

// FetchAccount resolves a Riot id to an account. ErrNotFound when unknown.
func (c *HDevClient) FetchAccount(ctx context.Context, name, tag string) (*Account, error) {
	u := fmt.Sprintf("%s/valorant/v2/account/%s/%s", c.baseURL, url.PathEscape(name), url.PathEscape(tag))

	var resp accountResponse
	if err := c.getJSON(ctx, "account", u, &resp); err != nil {
		return nil, err
	}
	if resp.Data.Puuid == "" {
		return nil, ErrNotFound
	}

	return &Account{
		Puuid:        resp.Data.Puuid,
		Name:         resp.Data.Name,
		Tag:          resp.Data.Tag,
		Region:       resp.Data.Region,
		AccountLevel: resp.Data.AccountLevel,
		Card:         resp.Data.Card,
		Title:        resp.Data.Title,
	}, nil
}

// FetchMatchHistory lists the most recent matches of a player, newest first.
// An empty modeFilter returns all modes.
func (c *HDevClient) FetchMatchHistory(ctx context.Context, region, puuid string, count int, modeFilter string) ([]MatchSummary, error) {
	if count <= 0 {
		count = constants.DefaultMatchHistorySize
	}
	if count > constants.MaxMatchHistorySize {
		count = constants.MaxMatchHistorySize
	}

	q := url.Values{}
	q.Set("size", strconv.Itoa(count))
	if modeFilter != "" {
		q.Set("mode", modeFilter)
	}
	u := fmt.Sprintf("%s/valorant/v4/by-puuid/matches/%s/%s/%s?%s",
		c.baseURL, url.PathEscape(region), constants.PlatformPC, url.PathEscape(puuid), q.Encode())

	var resp matchHistoryResponse
	if err := c.getJSON(ctx, "match_history", u, &resp); err != nil {
		if IsNotFound(err) {
			return []MatchSummary{}, nil
		}
		return nil, err
	}

	out := make([]MatchSummary, 0, len(resp.Data))
	for _, m := range resp.Data {
		if m.Metadata.MatchID == "" {
			continue
		}
		out = append(out, MatchSummary{
			MatchID:   m.Metadata.MatchID,
			MapName:   m.Metadata.Map.Name,
			Mode:      normalizeMode(firstNonEmpty(m.Metadata.Queue.ID, m.Metadata.Queue.Name)),
			StartedAt: isoToTime(m.Metadata.StartedAt),
		})
		if len(out) == count {
			break
		}
	}
	return out, nil
}

// FetchMatchDetails loads a match. Match ids carry no region, so every
// configured region is tried against the v4 endpoint before falling back to
// the region-agnostic v2 endpoint.
func (c *HDevClient) FetchMatchDetails(ctx context.Context, matchID string) (*MatchDetails, error) {
	return c.fetchMatch(ctx, matchID, false)
}

// FetchStoredMatchDetails is FetchMatchDetails against the archive endpoints.
func (c *HDevClient) FetchStoredMatchDetails(ctx context.Context, matchID string) (*MatchDetails, error) {
	return c.fetchMatch(ctx, matchID, true)
}

type matchAttempt struct {
	schema   SchemaVersion
	region   string
	endpoint string
	url      string
}

func (c *HDevClient) matchAttempts(matchID string, archived bool) []matchAttempt {
	v4Path, v2Path, suffix := "match", "match", ""
	if archived {
		v4Path, v2Path, suffix = "stored-match", "stored-match", "_stored"
	}
	id := url.PathEscape(matchID)

	attempts := make([]matchAttempt, 0, len(c.regions)+1)
	for _, region := range c.regions {
		attempts = append(attempts, matchAttempt{
			schema:   SchemaV4,
			region:   region,
			endpoint: "match_v4" + suffix,
			url:      fmt.Sprintf("%s/valorant/v4/%s/%s/%s", c.baseURL, v4Path, url.PathEscape(region), id),
		})
	}
	attempts = append(attempts, matchAttempt{
		schema:   SchemaV2,
		endpoint: "match_v2" + suffix,
		url:      fmt.Sprintf("%s/valorant/v2/%s/%s", c.baseURL, v2Path, id),
	})
	return attempts
}

func (c *HDevClient) fetchMatch(ctx context.Context, matchID string, archived bool) (*MatchDetails, error) {
	attempts := c.matchAttempts(matchID, archived)

	var causes []error
	allNotFound := true

	for _, a := range attempts {
		details, err := c.fetchMatchAttempt(ctx, a)
		if err == nil {
			details.Archived = archived
			if details.Region == "" {
				details.Region = a.region
			}
			c.logger.Debug().
				Str("match_id", matchID).
				Str("region", a.region).
				Str("schema", a.schema.String()).
				Bool("archived", archived).
				Msg("match details fetched")
			return details, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		c.logger.Debug().
			Err(err).
			Str("match_id", matchID).
			Str("region", a.region).
			Str("schema", a.schema.String()).
			Msg("match details attempt failed, trying next")

		if !IsNotFound(err) {
			allNotFound = false
		}
		causes = append(causes, err)
	}

	if allNotFound {
		return nil, fmt.Errorf("match %s: %w", matchID, ErrNotFound)
	}

	c.logger.Warn().
		Str("match_id", matchID).
		Bool("archived", archived).
		Int("attempts", len(causes)).
		Msg("all regions and schema versions failed")

	return nil, &PermanentError{
		Endpoint: "match",
		Message:  fmt.Sprintf("match %s unavailable in every region and schema version", matchID),
		Causes:   causes,
	}
}

func (c *HDevClient) fetchMatchAttempt(ctx context.Context, a matchAttempt) (*MatchDetails, error) {
	body, err := c.get(ctx, a.endpoint, a.url)
	if err != nil {
		return nil, err
	}
	return parseMatch(a.schema, a.endpoint, body)
}

// FetchRank returns the current competitive rank of a player.
func (c *HDevClient) FetchRank(ctx context.Context, region, puuid string) (*Rank, error) {
	u := fmt.Sprintf("%s/valorant/v3/by-puuid/mmr/%s/%s/%s",
		c.baseURL, url.PathEscape(region), constants.PlatformPC, url.PathEscape(puuid))

	var resp mmrResponse
	if err := c.getJSON(ctx, "mmr", u, &resp); err != nil {
		return nil, err
	}

	return &Rank{
		Tier:     resp.Data.Current.Tier.ID,
		TierName: resp.Data.Current.Tier.Name,
		RR:       resp.Data.Current.RR,
		Elo:      resp.Data.Current.Elo,
	}, nil
}

func (c *HDevClient) getJSON(ctx context.Context, endpoint, u string, out any) error {
	body, err := c.get(ctx, endpoint, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &PermanentError{Endpoint: endpoint, Message: "malformed payload", Err: err}
	}
	return nil
}

type accountResponse struct {
	Status int `json:"status"`
	Data   struct {
		Puuid        string `json:"puuid"`
		Region       string `json:"region"`
		AccountLevel int    `json:"account_level"`
		Name         string `json:"name"`
		Tag          string `json:"tag"`
		Card         string `json:"card"`
		Title        string `json:"title"`
	} `json:"data"`
}

type matchHistoryResponse struct {
	Status int           `json:"status"`
	Data   []v4MatchData `json:"data"`
}

type mmrResponse struct {
	Status int `json:"status"`
	Data   struct {
		Current struct {
			Tier struct {
				ID   int    `json:"id"`
				Name string `json:"name"`
			} `json:"tier"`
			RR  int `json:"rr"`
			Elo int `json:"elo"`
		} `json:"current"`
	} `json:"data"`
}
