package config

import (
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Server.Port != 20310 {
		t.Fatalf("默认端口: %d", cfg.Server.Port)
	}
	if cfg.Validate.BalanceTolerance != 0.01 {
		t.Fatalf("默认平衡容差: %v", cfg.Validate.BalanceTolerance)
	}
	if cfg.Upload.MaxSizeMB != 50 {
		t.Fatalf("默认上传上限: %d", cfg.Upload.MaxSizeMB)
	}
}

func TestIsPortSpecifiedInToml(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		toml string
		want bool
	}{
		{"显式端口", "[server]\nport = 9000\n", true},
		{"server 段无 port", "[server]\ndev_mode = true\n", false},
		{"无 server 段", "[data]\ndata_dir = \"d\"\n", false},
		{"非法 toml", "not toml at all [", false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isPortSpecifiedInToml([]byte(tc.toml)); got != tc.want {
				t.Fatalf("want %v got %v", tc.want, got)
			}
		})
	}
}

func TestConfigTomlRoundTrip(t *testing.T) {
	t.Parallel()

	orig := DefaultConfig()
	orig.Server.Port = 8080
	orig.Server.DevMode = true
	orig.Validate.BalanceTolerance = 0.05

	data, err := toml.Marshal(orig)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	loaded := DefaultConfig()
	if err := toml.Unmarshal(data, loaded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if *loaded != *orig {
		t.Fatalf("回环不一致:\nwant %+v\ngot  %+v", orig, loaded)
	}
}
