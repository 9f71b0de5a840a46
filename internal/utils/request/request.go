package request

import (
	"net/http"

	"github.com/go-resty/resty/v2"
)

// Adapters make a single attempt per call; transient failures are surfaced to
// the orchestrator instead of being retried here.
var Request = resty.New().SetTransport(&http.Transport{
	Proxy: http.ProxyFromEnvironment, // 通用适配环境变量
}).SetRetryCount(0)
