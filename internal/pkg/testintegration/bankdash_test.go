package testintegration

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-openapi/testify/v2/require"

	"bankdash/internal/pkg/chart"
	"bankdash/internal/pkg/config"
	"bankdash/internal/pkg/dashboard"
	"bankdash/internal/pkg/dataset"
)

func TestBankdash(t *testing.T) {
	t.Run("with applications fixture", func(t *testing.T) {
		fixture := filepath.Join("..", "dataset", "testdata", "applications.csv")

		t.Run("should load config", func(t *testing.T) {
			cfg, err := config.LoadDefaults()
			require.NoError(t, err)
			require.NotNil(t, cfg)

			writeData(t, "test_config.json", cfg)

			t.Run("should load dataset", func(t *testing.T) {
				ds, err := dataset.NewLoader(cfg).LoadFile(fixture)
				require.NoError(t, err)
				require.Equal(t, 12, ds.Len())

				writeData(t, "test_profile.json", ds.Profile())

				t.Run("should build dashboard", func(t *testing.T) {
					builder := dashboard.New(cfg, ds)
					dash := builder.Build(dataset.Selection{"employment_type": "Salaried"})
					require.Equal(t, 6, dash.Rows)

					writeData(t, "test_dashboard.json", dash)

					t.Run("should build page", func(t *testing.T) {
						page := chart.New(cfg, dash).BuildPage()
						require.Len(t, page.Charts, len(cfg.Charts))

						t.Run("should render page", func(t *testing.T) {
							var buf bytes.Buffer
							require.NoError(t, page.Render(&buf))

							writeResult(t, "test_html.html", &buf)
						})
					})
				})
			})
		})
	})
}

func writeData(t *testing.T, name string, data any) {
	t.Helper()

	buf, err := json.MarshalIndent(data, "", "  ")
	require.NoError(t, err)

	rdr := bytes.NewReader(buf)
	writeResult(t, name, rdr)
}

func writeResult(t *testing.T, name string, rdr io.Reader) {
	t.Helper()

	file, err := os.Create(name)
	require.NoError(t, err)

	_, err = io.Copy(file, rdr)
	require.NoError(t, err)
}
