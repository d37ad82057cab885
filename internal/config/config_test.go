package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		setup   func()
		cleanup func()
		wantErr bool
	}{
		{
			name: "load with defaults",
			setup: func() {
				os.Unsetenv("DATABASE_URL")
				os.Unsetenv("REDIS_URL")
			},
			cleanup: func() {},
			wantErr: false,
		},
		{
			name: "load with environment variables",
			setup: func() {
				os.Setenv("ULMS_SERVER_PORT", "9090")
				os.Setenv("ULMS_DATABASE_HOST", "testhost")
				os.Setenv("ULMS_REDIS_HOST", "testredis")
			},
			cleanup: func() {
				os.Unsetenv("ULMS_SERVER_PORT")
				os.Unsetenv("ULMS_DATABASE_HOST")
				os.Unsetenv("ULMS_REDIS_HOST")
			},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.cleanup()

			cfg, err := Load()
			if (err != nil) != tt.wantErr {
				t.Errorf("Load() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if cfg == nil {
					t.Error("Load() returned nil config")
					return
				}

				if cfg.Server.Port == "" {
					t.Error("Server port not set")
				}
				if cfg.Database.Host == "" {
					t.Error("Database host not set")
				}
				if cfg.Redis.Host == "" {
					t.Error("Redis host not set")
				}
			}
		})
	}
}

func TestLoad_LibraryDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Library.DefaultLoanDays != 14 {
		t.Errorf("DefaultLoanDays = %d, want 14", cfg.Library.DefaultLoanDays)
	}
	if cfg.Library.GracePeriodDays != 2 {
		t.Errorf("GracePeriodDays = %d, want 2", cfg.Library.GracePeriodDays)
	}
	if cfg.Library.DailyFineRate != 0.50 {
		t.Errorf("DailyFineRate = %v, want 0.50", cfg.Library.DailyFineRate)
	}
	if cfg.Library.ReferenceDailyRate != 1.00 {
		t.Errorf("ReferenceDailyRate = %v, want 1.00", cfg.Library.ReferenceDailyRate)
	}
	if cfg.Library.MaxFineAmount != 50.00 {
		t.Errorf("MaxFineAmount = %v, want 50.00", cfg.Library.MaxFineAmount)
	}
	if cfg.Library.MaxOpenRequests != 5 {
		t.Errorf("MaxOpenRequests = %d, want 5", cfg.Library.MaxOpenRequests)
	}
	if cfg.Library.SweepInterval != time.Hour {
		t.Errorf("SweepInterval = %v, want 1h", cfg.Library.SweepInterval)
	}
}
