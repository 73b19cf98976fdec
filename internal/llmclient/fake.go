package llmclient

import "context"

// Fake is a scripted Provider used by other packages' tests so they don't
// need a live Anthropic/OpenAI backend.
type Fake struct {
	Response Response
	Err      error
	Calls    []Request
}

func (f *Fake) Complete(_ context.Context, req Request) (Response, error) {
	f.Calls = append(f.Calls, req)
	if f.Err != nil {
		return Response{}, f.Err
	}
	return f.Response, nil
}
