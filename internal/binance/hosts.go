package binance

import "github.com/quantgate/binance-gateway/pkg/schema"

// Endpoints bundles the three hosts of one environment. Live versus Test is a
// single configuration-driven decision; no other URL lives outside this file.
type Endpoints struct {
	REST      string
	ControlWS string
	StreamWS  string
}

const (
	// 实盘地址
	liveRESTHost    = "https://api.binance.com"
	liveControlHost = "wss://ws-api.binance.com:443/ws-api/v3"
	liveStreamHost  = "wss://stream.binance.com:9443/ws"

	// 模拟盘地址
	testRESTHost    = "https://testnet.binance.vision"
	testControlHost = "wss://testnet.binance.vision/ws-api/v3"
	testStreamHost  = "wss://testnet.binance.vision/ws"
)

// EndpointsFor resolves the endpoint set for a server kind.
func EndpointsFor(server schema.ServerKind) Endpoints {
	if server == schema.ServerTest {
		return Endpoints{
			REST:      testRESTHost,
			ControlWS: testControlHost,
			StreamWS:  testStreamHost,
		}
	}
	return Endpoints{
		REST:      liveRESTHost,
		ControlWS: liveControlHost,
		StreamWS:  liveStreamHost,
	}
}
