// Интерфейс Провайдера, через который работает всё приложение.

package llm

import "context"

// Provider - абстракция над LLM API.
//
// Один вызов Run - один запрос без повторов. Таймаут задаётся
// HTTP клиентом провайдера и ctx.
type Provider interface {
	Run(ctx context.Context, req Request) (*Response, error)
}

// ProviderFunc позволяет использовать функцию как Provider.
type ProviderFunc func(ctx context.Context, req Request) (*Response, error)

// Run вызывает f(ctx, req).
func (f ProviderFunc) Run(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
