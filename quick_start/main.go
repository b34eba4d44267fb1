package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/quantgate/binance-gateway/internal/config"
	"github.com/quantgate/binance-gateway/internal/gateway"
	"github.com/quantgate/binance-gateway/pkg/logger"
	"github.com/quantgate/binance-gateway/pkg/schema"
)

func main() {
	fmt.Println("=== Binance Spot Gateway 快速开始 ===")

	// .env 可选，缺失时直接用进程环境
	_ = godotenv.Load()

	configPath := "config.yaml"
	if len(os.Args) > 1 {
		configPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Configure(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output, cfg.Logging.MaxAge); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	// 1. 创建网关
	gw := gateway.New(gateway.Options{
		Server:         cfg.Gateway.ServerKind(),
		APIKey:         config.ResolveCredential(cfg.Gateway.Key),
		APISecret:      config.ResolveCredential(cfg.Gateway.Secret),
		ProxyURL:       cfg.Gateway.ProxyURL(),
		RequestTimeout: cfg.Gateway.RequestTimeout,
		Callbacks: gateway.Callbacks{
			OnOrder: func(o schema.Order) {
				fmt.Printf("订单推送: %s %s %s 状态=%s 成交=%s/%s\n",
					o.Symbol, o.Side, o.Price, o.Status, o.FilledQty, o.Quantity)
			},
			OnTrade: func(t schema.Trade) {
				fmt.Printf("成交推送: %s 价格=%s 数量=%s 手续费=%s %s\n",
					t.Symbol, t.Price, t.Quantity, t.Commission, t.CommissionAsset)
			},
			OnAccount: func(a schema.Account) {
				fmt.Printf("账户推送: %d个资产\n", len(a.Balances))
			},
			OnLog: func(msg string) {
				fmt.Printf("网关事件: %s\n", msg)
			},
		},
	})

	// 2. 连接交易所
	fmt.Println("连接交易所...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := gw.Connect(ctx); err != nil {
		cancel()
		fmt.Fprintf(os.Stderr, "connect: %v\n", err)
		os.Exit(1)
	}
	cancel()

	// 3. 查询最近一小时K线
	end := time.Now()
	bars, err := gw.QueryHistory(context.Background(), schema.HistoryRequest{
		Symbol:   "BTCUSDT",
		Interval: schema.IntervalMinute,
		Start:    end.Add(-time.Hour),
		End:      end,
	})
	if err != nil {
		fmt.Printf("BTCUSDT K线查询失败: %v\n", err)
	} else if len(bars) > 0 {
		last := bars[len(bars)-1]
		fmt.Printf("BTCUSDT 最新K线: 开盘=%s 最高=%s 最低=%s 收盘=%s\n",
			last.Open, last.High, last.Low, last.Close)
	}

	// 4. 定时器驱动连接保活
	fmt.Println("网关已连接，按 Ctrl+C 退出")
	ticker := time.NewTicker(cfg.Gateway.TimerInterval)
	defer ticker.Stop()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			gw.ProcessTimerEvent()
			if gw.SessionDegraded() {
				fmt.Println("警告: 会话已降级，等待恢复")
			}
		case <-quit:
			fmt.Println("\n收到退出信号，正在关闭...")
			if err := gw.Close(); err != nil {
				fmt.Fprintf(os.Stderr, "close: %v\n", err)
			}
			return
		}
	}
}
