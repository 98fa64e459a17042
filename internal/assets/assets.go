// Package assets looks up display imagery for the fixed map and agent
// sets from the public game-data API. Results are opaque name-to-image
// mappings; missing entries are tolerated and come back blank.
package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Client struct {
	http    *http.Client
	baseURL string
	log     *zap.Logger
}

func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		http:    &http.Client{Timeout: 15 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		log:     log,
	}
}

type Ability struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
	Slot string `json:"slot"`
}

type Agent struct {
	Icon      string    `json:"icon"`
	Abilities []Ability `json:"abilities"`
}

type mapsResponse struct {
	Data []struct {
		DisplayName  string `json:"displayName"`
		DisplayIcon  string `json:"displayIcon"`
		StylizedIcon string `json:"stylizedBackgroundImage"`
		AssetPath    string `json:"assetPath"`
	} `json:"data"`
}

type agentsResponse struct {
	Data []struct {
		DisplayName string `json:"displayName"`
		DisplayIcon string `json:"displayIcon"`
		Abilities   []struct {
			DisplayName string `json:"displayName"`
			DisplayIcon string `json:"displayIcon"`
			Slot        string `json:"slot"`
		} `json:"abilities"`
	} `json:"data"`
}

// MapImages returns map display name -> image reference.
func (c *Client) MapImages(ctx context.Context) (map[string]string, error) {
	var out mapsResponse
	if err := c.get(ctx, "/maps", &out); err != nil {
		return nil, err
	}

	images := map[string]string{}
	for _, m := range out.Data {
		// Range/tool entries share names with playable maps; keep only
		// real map assets.
		if !strings.Contains(m.AssetPath, "Maps/") {
			continue
		}
		icon := m.StylizedIcon
		if icon == "" {
			icon = m.DisplayIcon
		}
		if m.DisplayName != "" {
			images[m.DisplayName] = icon
		}
	}
	return images, nil
}

// Agents returns agent display name -> icon and usable abilities.
func (c *Client) Agents(ctx context.Context) (map[string]Agent, error) {
	var out agentsResponse
	if err := c.get(ctx, "/agents?isPlayableCharacter=true", &out); err != nil {
		return nil, err
	}

	agents := map[string]Agent{}
	for _, a := range out.Data {
		agent := Agent{Icon: a.DisplayIcon}
		for _, ab := range a.Abilities {
			if ab.Slot == "Passive" || ab.DisplayIcon == "" {
				continue
			}
			agent.Abilities = append(agent.Abilities, Ability{
				Name: ab.DisplayName,
				Icon: ab.DisplayIcon,
				Slot: ab.Slot,
			})
		}
		if a.DisplayName != "" {
			agents[a.DisplayName] = agent
		}
	}
	return agents, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build asset request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
