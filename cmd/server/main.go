package main

import (
	"context"
	"encoding/json"
	"flag"
	"net/http"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"table-profiler/internal/adapter"
	"table-profiler/internal/config"
	"table-profiler/internal/profiler"
	"table-profiler/internal/renderer"
	"table-profiler/internal/splitter"
	"table-profiler/internal/table"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// Source 数据来源：内联 CSV 或数据库表
type Source struct {
	CSV       string `json:"csv"`
	Delimiter string `json:"delimiter"`
	IndexCol  bool   `json:"index_col"`
	DBType    string `json:"db_type"` // sqlserver/mysql
	Conn      string `json:"conn"`
	Schema    string `json:"schema"`
	Table     string `json:"table"`
	Limit     int    `json:"limit"`
}

// AnalysisRequest 分析请求
type AnalysisRequest struct {
	Source Source `json:"source"`
	Clean  bool   `json:"clean"`  // profile
	Column string `json:"column"` // split
	Sep    string `json:"sep"`    // split
	Keep   bool   `json:"keep"`   // split
}

// AnalysisTask 分析任务
type AnalysisTask struct {
	ID        string          `json:"id"`
	Kind      string          `json:"kind"` // profile/split
	Status    string          `json:"status"`
	Progress  int             `json:"progress"`
	Message   string          `json:"message"`
	Result    *AnalysisResult `json:"result,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	request AnalysisRequest
}

// AnalysisResult 分析结果
type AnalysisResult struct {
	JSON     json.RawMessage `json:"json"`
	Markdown string          `json:"markdown"`
	Rows     int             `json:"rows"`
	Columns  int             `json:"columns"`
}

const (
	statusPending   = "pending"
	statusRunning   = "running"
	statusCompleted = "completed"
	statusFailed    = "failed"
)

// Server 任务服务
type Server struct {
	logger   zerolog.Logger
	profiler *profiler.Profiler
	timeout  time.Duration

	mu    sync.RWMutex
	tasks map[string]*AnalysisTask
}

// NewServer 创建服务
func NewServer(logger zerolog.Logger) *Server {
	return &Server{
		logger:   logger,
		profiler: profiler.NewProfiler(logger),
		timeout:  5 * time.Minute,
		tasks:    make(map[string]*AnalysisTask),
	}
}

// Routes 注册路由
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/profile", s.handleSubmit("profile"))
	mux.HandleFunc("/api/split", s.handleSubmit("split"))
	mux.HandleFunc("/api/task/", s.handleTaskStatus)
	mux.HandleFunc("/api/ws", s.handleWebSocket)
	mux.HandleFunc("/api/test-connection", s.handleTestConnection)
	return mux
}

func main() {
	configPath := flag.String("config", "", "YAML 配置文件")
	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fallback := zerolog.New(os.Stderr)
			fallback.Fatal().Err(err).Msg("load config")
		}
		cfg = loaded
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}

	logger, err := config.NewLogger(cfg.Log, os.Stderr)
	if err != nil {
		fallback := zerolog.New(os.Stderr)
		fallback.Fatal().Err(err).Msg("create logger")
	}

	srv := NewServer(logger)
	logger.Info().Str("addr", cfg.Server.Addr).Msg("table profiler server listening")
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Routes()); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

// handleSubmit 创建任务并异步执行
func (s *Server) handleSubmit(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		var req AnalysisRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if kind == "split" && req.Column == "" {
			http.Error(w, "column is required", http.StatusBadRequest)
			return
		}
		if req.Source.Limit < 0 {
			http.Error(w, "source limit must not be negative", http.StatusBadRequest)
			return
		}

		now := time.Now()
		task := &AnalysisTask{
			ID:        uuid.NewString(),
			Kind:      kind,
			Status:    statusPending,
			Message:   "task created",
			CreatedAt: now,
			UpdatedAt: now,
			request:   req,
		}

		s.mu.Lock()
		s.tasks[task.ID] = task
		s.mu.Unlock()

		go s.run(task)

		writeJSON(w, http.StatusAccepted, map[string]string{
			"task_id": task.ID,
			"status":  statusPending,
		})
	}
}

// handleTaskStatus 查询任务状态
func (s *Server) handleTaskStatus(w http.ResponseWriter, r *http.Request) {
	task, ok := s.snapshot(path.Base(r.URL.Path))
	if !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// handleWebSocket 持续推送任务状态直到结束
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	taskID := r.URL.Query().Get("task_id")
	if _, ok := s.snapshot(taskID); !ok {
		http.Error(w, "Task not found", http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		task, ok := s.snapshot(taskID)
		if !ok {
			return
		}
		if err := conn.WriteJSON(task); err != nil {
			return
		}
		if task.Status == statusCompleted || task.Status == statusFailed {
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
		}
	}
}

// handleTestConnection 测试数据库连接
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var src Source
	if err := json.NewDecoder(r.Body).Decode(&src); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	db, err := adapter.NewAdapter(src.DBType, src.Conn, src.Schema)
	if err != nil {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	defer db.Close()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "connected",
	})
}

// snapshot 返回任务副本，避免与执行中的任务竞争
func (s *Server) snapshot(id string) (AnalysisTask, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	task, ok := s.tasks[id]
	if !ok {
		return AnalysisTask{}, false
	}
	return *task, true
}

func (s *Server) update(task *AnalysisTask, status string, progress int, message string) {
	s.mu.Lock()
	task.Status = status
	task.Progress = progress
	task.Message = message
	task.UpdatedAt = time.Now()
	s.mu.Unlock()
}

// run 执行任务
func (s *Server) run(task *AnalysisTask) {
	logger := s.logger.With().Str("task_id", task.ID).Str("kind", task.Kind).Logger()
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	s.update(task, statusRunning, 10, "loading source")
	t, err := loadSource(ctx, task.request.Source)
	if err != nil {
		logger.Error().Err(err).Msg("load source failed")
		s.update(task, statusFailed, 10, err.Error())
		return
	}

	s.update(task, statusRunning, 50, "analyzing")
	var result *AnalysisResult
	switch task.Kind {
	case "profile":
		result, err = s.profile(t, task.request)
	case "split":
		result, err = split(t, task.request)
	default:
		err = errors.Errorf("unknown task kind %q", task.Kind)
	}
	if err != nil {
		logger.Error().Err(err).Msg("task failed")
		s.update(task, statusFailed, 50, err.Error())
		return
	}

	s.mu.Lock()
	task.Result = result
	s.mu.Unlock()
	s.update(task, statusCompleted, 100, "done")
	logger.Info().Int("rows", result.Rows).Int("columns", result.Columns).Msg("task completed")
}

func (s *Server) profile(t *table.Table, req AnalysisRequest) (*AnalysisResult, error) {
	summary, err := s.profiler.Profile(t, req.Clean)
	if err != nil {
		return nil, err
	}
	data, err := summary.ToJSON()
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{
		JSON:     data,
		Markdown: renderer.NewMarkdownRenderer().RenderSummary("profile", summary),
		Rows:     summary.Len(),
		Columns:  len(t.Columns()),
	}, nil
}

func split(t *table.Table, req AnalysisRequest) (*AnalysisResult, error) {
	opts := splitter.DefaultOptions()
	if req.Sep != "" {
		opts.Sep = req.Sep
	}
	opts.Keep = req.Keep

	out, err := splitter.SplitRows(t, req.Column, opts)
	if err != nil {
		return nil, err
	}
	data, err := renderer.TableJSON(out)
	if err != nil {
		return nil, err
	}
	return &AnalysisResult{
		JSON:     data,
		Markdown: renderer.NewMarkdownRenderer().RenderTable(req.Column, out, 100),
		Rows:     out.NumRows(),
		Columns:  len(out.Columns()),
	}, nil
}

// loadSource 读取内联 CSV 或数据库表
func loadSource(ctx context.Context, src Source) (*table.Table, error) {
	if src.CSV != "" {
		opts := adapter.CSVOptions{IndexCol: src.IndexCol, Limit: src.Limit}
		if src.Delimiter != "" {
			opts.Delimiter = []rune(src.Delimiter)[0]
		}
		return adapter.ReadCSV(strings.NewReader(src.CSV), opts)
	}

	if src.Table == "" {
		return nil, errors.New("source requires csv or table")
	}
	db, err := adapter.NewAdapter(src.DBType, src.Conn, src.Schema)
	if err != nil {
		return nil, errors.Wrap(err, "connect")
	}
	defer db.Close()
	return db.LoadTable(ctx, src.Table, src.Limit)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
