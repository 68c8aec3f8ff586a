package ai

import (
	"sort"
	"strings"

	"github.com/zhouzirui/sms-sim/internal/config"
)

// Provider names the vendor behind a model id.
type Provider string

const (
	ProviderDeepSeek  Provider = "deepseek"
	ProviderOpenAI    Provider = "openai"
	ProviderArk       Provider = "ark"
	ProviderAnthropic Provider = "anthropic"
)

// ModelInfo describes one entry of the model selector.
type ModelInfo struct {
	ID        string   `json:"id"`
	Provider  Provider `json:"provider"`
	Available bool     `json:"available"`
	Default   bool     `json:"default,omitempty"`
}

// Catalog maps model ids to providers.
type Catalog struct {
	defaultModel string
	models       map[string]ModelInfo
	enabled      map[Provider]bool
}

// NewCatalog builds the catalog from the configured model lists.
func NewCatalog(cfg config.AIConfig) *Catalog {
	c := &Catalog{
		defaultModel: strings.TrimSpace(cfg.DefaultModel),
		models:       make(map[string]ModelInfo),
		enabled: map[Provider]bool{
			ProviderDeepSeek:  cfg.DeepSeekEnabled(),
			ProviderOpenAI:    cfg.OpenAIEnabled(),
			ProviderArk:       cfg.ArkEnabled(),
			ProviderAnthropic: cfg.AnthropicEnabled(),
		},
	}

	c.add(ProviderDeepSeek, cfg.DeepSeekModels)
	c.add(ProviderOpenAI, cfg.OpenAIModels)
	c.add(ProviderArk, cfg.ArkModels)
	c.add(ProviderAnthropic, cfg.AnthropicModels)

	if c.defaultModel != "" {
		if _, ok := c.models[c.defaultModel]; !ok {
			if provider, ok := inferProvider(c.defaultModel); ok {
				c.add(provider, []string{c.defaultModel})
			}
		}
	}
	return c
}

func (c *Catalog) add(provider Provider, ids []string) {
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, exists := c.models[id]; exists {
			continue
		}
		c.models[id] = ModelInfo{
			ID:        id,
			Provider:  provider,
			Available: c.enabled[provider],
			Default:   id == c.defaultModel,
		}
	}
}

// DefaultModel is used when a request leaves the model empty.
func (c *Catalog) DefaultModel() string {
	return c.defaultModel
}

// Resolve returns the catalog entry for id, falling back to the default
// model for an empty id and to prefix inference for unlisted ids.
func (c *Catalog) Resolve(id string) (ModelInfo, bool) {
	id = strings.TrimSpace(id)
	if id == "" {
		id = c.defaultModel
	}
	if info, ok := c.models[id]; ok {
		return info, true
	}
	provider, ok := inferProvider(id)
	if !ok {
		return ModelInfo{}, false
	}
	return ModelInfo{ID: id, Provider: provider, Available: c.enabled[provider]}, true
}

// List returns the models sorted with the default first, then by id.
func (c *Catalog) List() []ModelInfo {
	list := make([]ModelInfo, 0, len(c.models))
	for _, info := range c.models {
		list = append(list, info)
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Default != list[j].Default {
			return list[i].Default
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// AvailableIDs lists ids whose provider has credentials.
func (c *Catalog) AvailableIDs() []string {
	var ids []string
	for _, info := range c.List() {
		if info.Available {
			ids = append(ids, info.ID)
		}
	}
	return ids
}

func inferProvider(id string) (Provider, bool) {
	lower := strings.ToLower(id)
	switch {
	case strings.HasPrefix(lower, "deepseek"):
		return ProviderDeepSeek, true
	case strings.HasPrefix(lower, "gpt"), strings.HasPrefix(lower, "o1"), strings.HasPrefix(lower, "o3"), strings.HasPrefix(lower, "o4"):
		return ProviderOpenAI, true
	case strings.HasPrefix(lower, "claude"):
		return ProviderAnthropic, true
	case strings.HasPrefix(lower, "doubao"), strings.HasPrefix(lower, "ep-"):
		return ProviderArk, true
	default:
		return "", false
	}
}
