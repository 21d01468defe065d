package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// TimeOfDay は0時からの分数（営業時間ウィンドウ用）
type TimeOfDay int

// "HH:MM" をパースする
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time of day: %s", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour: %s", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute: %s", s)
	}
	return TimeOfDay(h*60 + m), nil
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// Configはアプリ全体の設定
type Config struct {
	Port string // サーバーポート（8080）

	PostgresUser     string // DBユーザー
	PostgresPassword string // DBパスワード
	PostgresDB       string // DB名
	PostgresHost     string // DBホスト（localhost）
	PostgresPort     int    // DBポート（5433）

	JWTSecret string // JWT署名シークレット

	// 注文確定まわりの業務設定
	MinimumCartPriceToFinalize int64     // この金額未満のカートは確定できない
	FinalizeStart              TimeOfDay // 営業開始（この時間帯のみ確定可）
	FinalizeEnd                TimeOfDay // 営業終了
	OrderExpireSeconds         int       // pendingのままこの秒数を超えた注文はキャンセル対象
	SweepIntervalSeconds       int       // キャンセルスイープの実行間隔
}

// Loadは環境変数
func Load() (Config, error) {
	pgPort, err := mustAtoi("POSTGRES_PORT")
	if err != nil {
		return Config{}, err
	}

	minPrice, err := mustAtoi64("MINIMUM_CART_PRICE_TO_FINALIZE")
	if err != nil {
		return Config{}, err
	}

	start, err := mustTimeOfDay("FINALIZE_START")
	if err != nil {
		return Config{}, err
	}
	end, err := mustTimeOfDay("FINALIZE_END")
	if err != nil {
		return Config{}, err
	}

	expire, err := mustAtoi("ORDER_EXPIRE_SECONDS")
	if err != nil {
		return Config{}, err
	}

	// スイープ間隔は未指定なら60秒
	sweep := 60
	if v := os.Getenv("SWEEP_INTERVAL_SECONDS"); v != "" {
		sweep, err = strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("SWEEP_INTERVAL_SECONDS must be number: %w", err)
		}
	}

	cfg := Config{
		Port: os.Getenv("PORT"),

		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     pgPort,

		JWTSecret: os.Getenv("JWT_SECRET"),

		MinimumCartPriceToFinalize: minPrice,
		FinalizeStart:              start,
		FinalizeEnd:                end,
		OrderExpireSeconds:         expire,
		SweepIntervalSeconds:       sweep,
	}

	//必須チェック
	if cfg.Port == "" {
		return Config{}, fmt.Errorf("PORT is required")
	}
	if cfg.PostgresUser == "" {
		return Config{}, fmt.Errorf("POSTGRES_USER is required")
	}
	if cfg.PostgresPassword == "" {
		return Config{}, fmt.Errorf("POSTGRES_PASSWORD is required")
	}
	if cfg.PostgresDB == "" {
		return Config{}, fmt.Errorf("POSTGRES_DB is required")
	}
	if cfg.PostgresHost == "" {
		return Config{}, fmt.Errorf("POSTGRES_HOST is required")
	}
	if cfg.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

func mustAtoi(key string) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func mustAtoi64(key string) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be number: %w", key, err)
	}
	return i, nil
}

func mustTimeOfDay(key string) (TimeOfDay, error) {
	v := os.Getenv(key)
	if v == "" {
		return 0, fmt.Errorf("%s is required", key)
	}
	t, err := ParseTimeOfDay(v)
	if err != nil {
		return 0, fmt.Errorf("%s must be HH:MM: %w", key, err)
	}
	return t, nil
}
