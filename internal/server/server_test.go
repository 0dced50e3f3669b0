package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/xuri/excelize/v2"

	"tablegen/internal/config"
	"tablegen/internal/pkg/id"
)

func fakeChat(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func chatBody(content string) string {
	data, _ := json.Marshal(map[string]any{
		"choices": []any{map[string]any{"message": map[string]any{"role": "assistant", "content": content}}},
	})
	return string(data)
}

func testConfig(t *testing.T, apiBase string) *config.Config {
	return &config.Config{
		API: config.APIConfig{
			APIKey:      "sk-test",
			Model:       "deepseek-chat",
			APIBase:     apiBase,
			Temperature: "0.5",
			MaxTokens:   "800",
		},
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 7080, Mode: "test"},
		Storage: config.StorageConfig{
			Type:  "local",
			Local: &config.LocalConfig{BasePath: t.TempDir(), BaseURL: "http://localhost:7080/files"},
		},
	}
}

func doJSON(engine http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Detail  string          `json:"detail"`
	Data    json.RawMessage `json:"data"`
}

func decode(w *httptest.ResponseRecorder) envelope {
	var env envelope
	_ = json.Unmarshal(w.Body.Bytes(), &env)
	return env
}

func TestServer(t *testing.T) {
	Convey("HTTP 服务", t, func() {
		chat := fakeChat(http.StatusOK, chatBody("| Name | Age |\n| Alice | 30 |\n| Bob | 25 |"))
		defer chat.Close()

		srv, err := New(testConfig(t, chat.URL))
		So(err, ShouldBeNil)
		engine := srv.Engine()

		Convey("健康检查", func() {
			w := doJSON(engine, http.MethodGet, "/health", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(id.IsValid(w.Header().Get("X-Request-ID")), ShouldBeTrue)

			w = doJSON(engine, http.MethodGet, "/ready", nil)
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"storage":"local"`)
			So(w.Body.String(), ShouldContainSubstring, `"history":false`)
		})

		Convey("生成表格", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/tables", map[string]any{"prompt": "list people"})
			So(w.Code, ShouldEqual, http.StatusOK)

			env := decode(w)
			So(env.Code, ShouldEqual, 0)
			var tbl struct {
				Header []string   `json:"header"`
				Rows   [][]string `json:"rows"`
			}
			So(json.Unmarshal(env.Data, &tbl), ShouldBeNil)
			So(tbl.Header, ShouldResemble, []string{"Name", "Age"})
			So(tbl.Rows, ShouldResemble, [][]string{{"Alice", "30"}, {"Bob", "25"}})
		})

		Convey("空白需求返回 400", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/tables", map[string]any{"prompt": "   "})
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			env := decode(w)
			So(env.Code, ShouldEqual, 40001)
			So(env.Kind, ShouldEqual, "invalid_input")
		})

		Convey("请求体不是 JSON 返回 400", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/tables", strings.NewReader("prompt=x"))
			req.Header.Set("Content-Type", "application/json")
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, req)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("导出并下载", func() {
			w := doJSON(engine, http.MethodPost, "/api/v1/tables/export", map[string]any{"prompt": "list people", "file_name": "people"})
			So(w.Code, ShouldEqual, http.StatusOK)

			var result struct {
				ID       string `json:"id"`
				FileName string `json:"file_name"`
				Rows     int    `json:"rows"`
				Columns  int    `json:"columns"`
			}
			So(json.Unmarshal(decode(w).Data, &result), ShouldBeNil)
			So(result.FileName, ShouldEqual, "people.xlsx")
			So(result.Rows, ShouldEqual, 2)
			So(result.Columns, ShouldEqual, 2)

			dl := doJSON(engine, http.MethodGet, "/api/v1/exports/"+result.ID+"/download", nil)
			So(dl.Code, ShouldEqual, http.StatusOK)
			So(dl.Header().Get("Content-Disposition"), ShouldEqual, `attachment; filename="people.xlsx"`)

			f, err := excelize.OpenReader(dl.Body)
			So(err, ShouldBeNil)
			defer f.Close()
			rows, err := f.GetRows("Sheet1")
			So(err, ShouldBeNil)
			So(rows, ShouldResemble, [][]string{{"Name", "Age"}, {"Alice", "30"}, {"Bob", "25"}})

			missing := doJSON(engine, http.MethodGet, "/api/v1/exports/"+id.New()+"/download", nil)
			So(missing.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("没有 Mongo 时不注册导出历史接口", func() {
			w := doJSON(engine, http.MethodGet, "/api/v1/exports", nil)
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("CORS 预检", func() {
			w := doJSON(engine, http.MethodOptions, "/api/v1/tables", nil)
			So(w.Code, ShouldEqual, http.StatusNoContent)
			So(w.Header().Get("Access-Control-Allow-Origin"), ShouldEqual, "*")
		})
	})

	Convey("上游错误映射为对应状态码", t, func() {
		Convey("非 200 响应返回 502 并携带原始响应体", func() {
			chat := fakeChat(http.StatusUnauthorized, `{"error":"invalid api key"}`)
			defer chat.Close()

			srv, err := New(testConfig(t, chat.URL))
			So(err, ShouldBeNil)

			w := doJSON(srv.Engine(), http.MethodPost, "/api/v1/tables", map[string]any{"prompt": "x"})
			So(w.Code, ShouldEqual, http.StatusBadGateway)
			env := decode(w)
			So(env.Kind, ShouldEqual, "request")
			So(env.Message, ShouldEqual, "chat completion request failed")
			So(env.Detail, ShouldEqual, `{"error":"invalid api key"}`)
		})

		Convey("没有表格返回 422", func() {
			chat := fakeChat(http.StatusOK, chatBody("no table here"))
			defer chat.Close()

			srv, err := New(testConfig(t, chat.URL))
			So(err, ShouldBeNil)

			w := doJSON(srv.Engine(), http.MethodPost, "/api/v1/tables", map[string]any{"prompt": "x"})
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(decode(w).Kind, ShouldEqual, "parse")
		})

		Convey("配置缺失返回 500", func() {
			cfg := testConfig(t, "")
			srv, err := New(cfg)
			So(err, ShouldBeNil)

			w := doJSON(srv.Engine(), http.MethodPost, "/api/v1/tables", map[string]any{"prompt": "x"})
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
			So(decode(w).Kind, ShouldEqual, "configuration")
		})
	})

	Convey("存储配置错误时创建失败", t, func() {
		cfg := testConfig(t, "http://localhost")
		cfg.Storage = config.StorageConfig{Type: "s3"}
		_, err := New(cfg)
		So(err, ShouldNotBeNil)
	})
}
