package ai

import (
	"context"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/pkg/errors"

	"github.com/zhouzirui/sms-sim/internal/config"
)

// arkModels dispatches to one Ark chat model per endpoint id. Ark binds the
// model at construction, so clients are created lazily and cached.
type arkModels struct {
	cfg     config.AIConfig
	mu      sync.Mutex
	clients map[string]model.BaseChatModel
}

var _ model.BaseChatModel = (*arkModels)(nil)

func newArkModels(cfg config.AIConfig) *arkModels {
	return &arkModels{cfg: cfg, clients: make(map[string]model.BaseChatModel)}
}

func (a *arkModels) Generate(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.Message, error) {
	client, err := a.client(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client.Generate(ctx, input, opts...)
}

func (a *arkModels) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	client, err := a.client(ctx, opts...)
	if err != nil {
		return nil, err
	}
	return client.Stream(ctx, input, opts...)
}

func (a *arkModels) client(ctx context.Context, opts ...model.Option) (model.BaseChatModel, error) {
	options := model.GetCommonOptions(&model.Options{}, opts...)
	if options.Model == nil || *options.Model == "" {
		return nil, errors.New("ark model not specified")
	}
	name := *options.Model

	a.mu.Lock()
	defer a.mu.Unlock()

	if client, ok := a.clients[name]; ok {
		return client, nil
	}
	client, err := a.cfg.NewArkModel(ctx, name)
	if err != nil {
		return nil, err
	}
	a.clients[name] = client
	return client, nil
}
