package push

import (
	"context"
	"encoding/json"
	"errors"
	"voucher_wheel/internal/pkg/config"

	"github.com/aliyun/alibaba-cloud-sdk-go/sdk/requests"
	"github.com/aliyun/alibaba-cloud-sdk-go/services/push"
	"go.uber.org/zap"
)

// ErrPushNotConfigured 未配置推送
var ErrPushNotConfigured = errors.New("push config is missing")

// PushService 按账号推送通知，账号即用户 ID
type PushService interface {
	PushToAccount(ctx context.Context, accountID, title, body string, extParameters map[string]string) error
}

type AliyunPushService struct {
	client *push.Client
	appKey int64
}

func NewAliyunPushService(cfg config.PushConfig) (*AliyunPushService, error) {
	if cfg.AccessKeyID == "" || cfg.AppKey == 0 {
		return nil, ErrPushNotConfigured
	}

	client, err := push.NewClientWithAccessKey(
		cfg.RegionID,
		cfg.AccessKeyID,
		cfg.AccessKeySecret,
	)
	if err != nil {
		return nil, err
	}

	return &AliyunPushService{
		client: client,
		appKey: cfg.AppKey,
	}, nil
}

func (s *AliyunPushService) PushToAccount(ctx context.Context, accountID, title, body string, extParameters map[string]string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	request := push.CreatePushRequest()
	request.AppKey = requests.NewInteger(int(s.appKey))
	request.Target = "ACCOUNT"
	request.TargetValue = accountID
	request.Title = title
	request.Body = body
	request.DeviceType = "ALL"
	request.PushType = "NOTICE"

	if len(extParameters) > 0 {
		extJSON, err := json.Marshal(extParameters)
		if err != nil {
			return err
		}
		request.AndroidExtParameters = string(extJSON)
		request.IOSExtParameters = string(extJSON)
	}

	_, err := s.client.Push(request)
	return err
}

// LogPushService 未配置推送时只记录日志
type LogPushService struct {
	log *zap.Logger
}

func NewLogPushService(log *zap.Logger) *LogPushService {
	return &LogPushService{log: log}
}

func (s *LogPushService) PushToAccount(_ context.Context, accountID, title, body string, extParameters map[string]string) error {
	s.log.Info("push notification",
		zap.String("account", accountID),
		zap.String("title", title),
		zap.String("body", body),
		zap.Any("ext", extParameters),
	)
	return nil
}

// NewPushService 已配置时使用阿里云推送，否则回退到日志
func NewPushService(cfg config.PushConfig, log *zap.Logger) PushService {
	service, err := NewAliyunPushService(cfg)
	if err != nil {
		log.Warn("aliyun push disabled, falling back to log", zap.Error(err))
		return NewLogPushService(log)
	}
	return service
}
