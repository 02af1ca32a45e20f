package app

import (
	"io"
	"net/http"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"maintkv/internal/config"
	apperrors "maintkv/internal/errors"
	"maintkv/internal/maintenance"
	"maintkv/internal/util"
)

// MaintenanceResponse 记录状态
type MaintenanceResponse struct {
	Key      string               `json:"key"`
	Exists   bool                 `json:"exists"`
	Settings maintenance.Settings `json:"settings"`
}

// handleGetMaintenance 读取当前记录（不存在时返回默认值）
// GET /admin/maintenance
func (s *Server) handleGetMaintenance(c *gin.Context) {
	ctx := c.Request.Context()

	rec, err := maintenance.Default(ctx, s.client, s.defaults)
	if err != nil {
		s.respondStoreError(c, "open", err)
		return
	}
	exists, err := rec.Exists(ctx)
	if err != nil {
		s.respondStoreError(c, "exists", err)
		return
	}

	RespondJSON(c, http.StatusOK, MaintenanceResponse{
		Key:      rec.Key(),
		Exists:   exists,
		Settings: rec.Settings(),
	})
}

// handleUpdateMaintenance 导入请求体中的设置并写回
// 未识别的键被忽略，缺失的字段保持原值
// PUT /admin/maintenance
func (s *Server) handleUpdateMaintenance(c *gin.Context) {
	values, err := readValues(c)
	if err != nil {
		RespondError(c, statusForError(err), err)
		return
	}
	s.importAndWrite(c, values, "update")
}

// handleImportEnv 从进程环境变量导入设置并写回
// POST /admin/maintenance/env
func (s *Server) handleImportEnv(c *gin.Context) {
	s.importAndWrite(c, maintenance.EnvValues(s.environ()), "import_env")
}

// handleDeleteMaintenance 删除整条记录
// DELETE /admin/maintenance
func (s *Server) handleDeleteMaintenance(c *gin.Context) {
	ctx := c.Request.Context()

	rec, err := maintenance.Default(ctx, s.client, s.defaults)
	if err != nil {
		s.respondStoreError(c, "open", err)
		return
	}
	if err := rec.Delete(ctx); err != nil {
		s.respondStoreError(c, "delete", err)
		return
	}

	s.logger.Info("maintenance record deleted", zap.String("key", rec.Key()))
	RespondJSON(c, http.StatusOK, gin.H{"key": rec.Key(), "deleted": true})
}

func (s *Server) importAndWrite(c *gin.Context, values map[string]any, op string) {
	ctx := c.Request.Context()

	rec, err := maintenance.Default(ctx, s.client, s.defaults)
	if err != nil {
		s.respondStoreError(c, "open", err)
		return
	}
	rec.Import(values)
	if err := rec.Write(ctx); err != nil {
		s.respondStoreError(c, "write", err)
		return
	}

	s.logger.Info("maintenance record written",
		zap.String("op", op),
		zap.String("key", rec.Key()),
		zap.Int("imported_fields", len(values)))
	RespondJSON(c, http.StatusOK, MaintenanceResponse{
		Key:      rec.Key(),
		Exists:   true,
		Settings: rec.Settings(),
	})
}

// readValues 解析 JSON 对象请求体
func readValues(c *gin.Context) (map[string]any, error) {
	body, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, config.DefaultMaxBodyBytes))
	if err != nil {
		return nil, apperrors.InvalidRequestError("body unreadable or too large", err)
	}

	var values map[string]any
	if err := sonic.Unmarshal(body, &values); err != nil {
		return nil, apperrors.InvalidRequestError("body must be a JSON object", err)
	}
	if values == nil {
		return nil, apperrors.InvalidRequestError("body must be a JSON object", nil)
	}
	return values, nil
}

// respondStoreError 解码错误为 500，其余存储错误为 503
func (s *Server) respondStoreError(c *gin.Context, op string, err error) {
	if !apperrors.IsAppError(err) {
		err = apperrors.StoreUnavailableError(op, err)
	}
	s.logger.Error("maintenance store operation failed",
		zap.String("op", op),
		zap.String("error", util.SanitizeError(err)))
	RespondError(c, statusForError(err), err)
}
