// Package registry はサービスレジストリ (Eureka) への自己登録を行います。
// registry.enabled が false の場合は何もしない。
package registry

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go_ms_user/internal/config"
)

// EurekaClient はEureka REST APIへの最小限のクライアントです。
// 登録・ハートビート・登録解除のみを行う。
type EurekaClient struct {
	cfg        *config.RegistryConfig
	httpClient *http.Client
	logger     *slog.Logger
	instanceID string

	cancelHeartbeat context.CancelFunc
}

type instanceInfo struct {
	InstanceID string         `json:"instanceId"`
	HostName   string         `json:"hostName"`
	App        string         `json:"app"`
	IPAddr     string         `json:"ipAddr"`
	Status     string         `json:"status"`
	Port       portInfo       `json:"port"`
	DataCenter dataCenterInfo `json:"dataCenterInfo"`
}

type portInfo struct {
	Port    int    `json:"$"`
	Enabled string `json:"@enabled"`
}

type dataCenterInfo struct {
	Class string `json:"@class"`
	Name  string `json:"name"`
}

type registerRequest struct {
	Instance instanceInfo `json:"instance"`
}

func NewEurekaClient(cfg *config.RegistryConfig, logger *slog.Logger) *EurekaClient {
	if logger == nil {
		logger = slog.Default()
	}
	return &EurekaClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
		instanceID: fmt.Sprintf("%s:%s:%d", cfg.InstanceHost, cfg.AppName, cfg.InstancePort),
	}
}

// Register はインスタンスをEurekaに登録し、ハートビートのgoroutineを起動します。
// 登録失敗はサービスの起動を妨げない (ログを残してリトライに任せる)。
func (c *EurekaClient) Register(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	if err := c.register(ctx); err != nil {
		return err
	}

	hbCtx, cancel := context.WithCancel(context.Background())
	c.cancelHeartbeat = cancel
	go c.heartbeatLoop(hbCtx)
	return nil
}

func (c *EurekaClient) register(ctx context.Context) error {
	body := registerRequest{
		Instance: instanceInfo{
			InstanceID: c.instanceID,
			HostName:   c.cfg.InstanceHost,
			App:        c.cfg.AppName,
			IPAddr:     c.cfg.InstanceHost,
			Status:     "UP",
			Port:       portInfo{Port: c.cfg.InstancePort, Enabled: "true"},
			DataCenter: dataCenterInfo{
				Class: "com.netflix.appinfo.InstanceInfo$DefaultDataCenterInfo",
				Name:  "MyOwn",
			},
		},
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("registry: marshal instance info: %w", err)
	}

	url := fmt.Sprintf("%s/apps/%s", c.cfg.EurekaURL, c.cfg.AppName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("registry: build register request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry: register: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("registry: register returned status %d", resp.StatusCode)
	}

	c.logger.Info("Registered with Eureka",
		"instance_id", c.instanceID,
		"eureka_url", c.cfg.EurekaURL,
	)
	return nil
}

func (c *EurekaClient) heartbeatLoop(ctx context.Context) {
	ticker := time.NewTicker(c.cfg.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.sendHeartbeat(ctx); err != nil {
				c.logger.Warn("Eureka heartbeat failed", "error", err)
			}
		}
	}
}

func (c *EurekaClient) sendHeartbeat(ctx context.Context) error {
	url := fmt.Sprintf("%s/apps/%s/%s", c.cfg.EurekaURL, c.cfg.AppName, c.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		// レジストリ側で期限切れになった場合は再登録する (ハートビートは既存のloopを使う)
		c.logger.Warn("Eureka instance expired, re-registering")
		return c.register(ctx)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("heartbeat returned status %d", resp.StatusCode)
	}
	return nil
}

// Deregister はハートビートを止め、インスタンスをEurekaから削除します。
func (c *EurekaClient) Deregister(ctx context.Context) error {
	if !c.cfg.Enabled {
		return nil
	}
	if c.cancelHeartbeat != nil {
		c.cancelHeartbeat()
	}

	url := fmt.Sprintf("%s/apps/%s/%s", c.cfg.EurekaURL, c.cfg.AppName, c.instanceID)
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, url, nil)
	if err != nil {
		return fmt.Errorf("registry: build deregister request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("registry: deregister: %w", err)
	}
	defer resp.Body.Close()

	c.logger.Info("Deregistered from Eureka", "instance_id", c.instanceID)
	return nil
}
