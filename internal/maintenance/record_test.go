package maintenance_test

import (
	"context"
	"reflect"
	"sort"
	"strings"
	"testing"

	apperrors "maintkv/internal/errors"
	"maintkv/internal/maintenance"
	"maintkv/internal/testutil"
)

const testKey = "maintkv:test"

type stubDefaults struct {
	reason       string
	allowedPaths []string
	allowedIPs   []string
	responseCode int
	retryAfter   string
}

func (d stubDefaults) Reason() string         { return d.reason }
func (d stubDefaults) AllowedPaths() []string { return d.allowedPaths }
func (d stubDefaults) AllowedIPs() []string   { return d.allowedIPs }
func (d stubDefaults) ResponseCode() int      { return d.responseCode }
func (d stubDefaults) RetryAfter() string     { return d.retryAfter }
func (d stubDefaults) RedisKey() string       { return testKey }

func newDefaults() stubDefaults {
	return stubDefaults{
		reason:       "default reason",
		allowedPaths: []string{},
		allowedIPs:   []string{},
		responseCode: 503,
		retryAfter:   "7200",
	}
}

func TestOpen_NoStoredRecordUsesDefaults(t *testing.T) {
	_, client := testutil.NewRedis(t)
	ctx := context.Background()

	rec, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}

	want := maintenance.Settings{
		Reason:       "default reason",
		AllowedPaths: []string{},
		AllowedIPs:   []string{},
		ResponseCode: 503,
		RetryAfter:   "7200",
	}
	if got := rec.Settings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Settings() = %+v, want %+v", got, want)
	}
	if rec.Key() != testKey {
		t.Errorf("Key() = %q", rec.Key())
	}

	exists, err := rec.Exists(ctx)
	if err != nil || exists {
		t.Errorf("Exists() = %v, %v; want false, nil", exists, err)
	}
}

func TestWriteThenOpen_RoundTrip(t *testing.T) {
	_, client := testutil.NewRedis(t)
	ctx := context.Background()

	rec, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}
	rec.SetReason("Upgrading database")
	rec.SetAllowedPaths([]string{"/health", "/a, b"})
	rec.SetAllowedIPs([]string{"10.0.0.1", "10.0.0.2"})
	rec.SetResponseCode(502)
	rec.SetRetryAfter("3600")
	if err := rec.Write(ctx); err != nil {
		t.Fatalf("Write failed: %v", err)
	}

	reopened, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	if !reflect.DeepEqual(reopened.Settings(), rec.Settings()) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", reopened.Settings(), rec.Settings())
	}
}

func TestWrite_StoredLayout(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	ctx := context.Background()

	rec, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}
	rec.SetAllowedIPs([]string{"1.2.3.4"})
	if err := rec.Write(ctx); err != nil {
		t.Fatal(err)
	}

	if got := mr.HGet(testKey, "allowed_ips"); got != `{"v":1,"items":["1.2.3.4"]}` {
		t.Errorf("allowed_ips stored as %q", got)
	}
	if got := mr.HGet(testKey, "response_code"); got != "503" {
		t.Errorf("response_code stored as %q", got)
	}
	if got := mr.HGet(testKey, "reason"); got != "default reason" {
		t.Errorf("reason stored as %q", got)
	}
}

func TestWrite_SparsePersistence(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	ctx := context.Background()

	d := newDefaults()
	d.reason = "   "
	d.retryAfter = ""
	rec, err := maintenance.Open(ctx, client, testKey, d)
	if err != nil {
		t.Fatal(err)
	}
	if err := rec.Write(ctx); err != nil {
		t.Fatal(err)
	}

	fields, err := mr.HKeys(testKey)
	if err != nil {
		t.Fatalf("HKeys failed: %v", err)
	}
	sort.Strings(fields)
	if !reflect.DeepEqual(fields, []string{"response_code"}) {
		t.Errorf("只应写入存在的字段，实际 %v", fields)
	}

	// 加载时缺失的字段不会被清空，保留默认值
	other := newDefaults()
	other.retryAfter = "60"
	reopened, err := maintenance.Open(ctx, client, testKey, other)
	if err != nil {
		t.Fatal(err)
	}
	if reopened.Settings().RetryAfter != "60" || reopened.Settings().Reason != "default reason" {
		t.Errorf("缺失字段应保留内存中的默认值: %+v", reopened.Settings())
	}
}

func TestWrite_AbsentFieldsAreSticky(t *testing.T) {
	_, client := testutil.NewRedis(t)
	ctx := context.Background()

	rec, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}
	rec.SetAllowedIPs([]string{"10.0.0.1"})
	if err := rec.Write(ctx); err != nil {
		t.Fatal(err)
	}

	// 清空后再次写入不会删除已存储的值
	rec.SetAllowedIPs(nil)
	if err := rec.Write(ctx); err != nil {
		t.Fatal(err)
	}

	reopened, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}
	if got := reopened.Settings().AllowedIPs; !reflect.DeepEqual(got, []string{"10.0.0.1"}) {
		t.Errorf("AllowedIPs = %v, want sticky [10.0.0.1]", got)
	}
}

func TestDelete(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	ctx := context.Background()

	rec, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}

	// 键不存在时删除不报错，也不影响其他键
	mr.Set("unrelated", "keep")
	if err := rec.Delete(ctx); err != nil {
		t.Fatalf("Delete on missing key failed: %v", err)
	}
	if got, _ := mr.Get("unrelated"); got != "keep" {
		t.Errorf("unrelated key changed: %q", got)
	}

	if err := rec.Write(ctx); err != nil {
		t.Fatal(err)
	}
	if err := rec.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	if mr.Exists(testKey) {
		t.Error("Delete 后键仍存在")
	}
}

func TestExistsAndFindConsistency(t *testing.T) {
	_, client := testutil.NewRedis(t)
	ctx := context.Background()
	d := newDefaults()

	if _, ok, err := maintenance.Find(ctx, client, d); err != nil || ok {
		t.Fatalf("Find before write = ok %v, err %v; want false, nil", ok, err)
	}

	rec, err := maintenance.Default(ctx, client, d)
	if err != nil {
		t.Fatal(err)
	}
	rec.SetReason("found me")
	if err := rec.Write(ctx); err != nil {
		t.Fatal(err)
	}

	if exists, err := rec.Exists(ctx); err != nil || !exists {
		t.Fatalf("Exists after write = %v, %v", exists, err)
	}
	found, ok, err := maintenance.Find(ctx, client, d)
	if err != nil || !ok {
		t.Fatalf("Find after write = ok %v, err %v", ok, err)
	}
	if found.Settings().Reason != "found me" {
		t.Errorf("Find returned reason %q", found.Settings().Reason)
	}

	if err := rec.Delete(ctx); err != nil {
		t.Fatal(err)
	}
	if exists, _ := rec.Exists(ctx); exists {
		t.Error("Exists after delete = true")
	}
	if _, ok, _ := maintenance.Find(ctx, client, d); ok {
		t.Error("Find after delete should report nothing found")
	}
}

func TestImport(t *testing.T) {
	_, client := testutil.NewRedis(t)
	rec, err := maintenance.Open(context.Background(), client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}
	before := rec.Settings()

	if !rec.Import(map[string]any{}) {
		t.Fatal("Import(empty) 应返回 true")
	}
	if !rec.Import(map[string]any{"unknown": "x", "reason": nil}) {
		t.Fatal("Import 应返回 true")
	}
	if !reflect.DeepEqual(rec.Settings(), before) {
		t.Errorf("空导入或 nil 值不应修改字段: %+v", rec.Settings())
	}

	rec.Import(map[string]any{
		"reason":        42,
		"allowed_paths": `/a, /b\, literal, /c`,
		"allowed_ips":   "1.2.3.4,5.6.7.8",
		"response_code": "503",
		"retry_after":   float64(120),
	})
	want := maintenance.Settings{
		Reason:       "42",
		AllowedPaths: []string{"/a", "/b, literal", "/c"},
		AllowedIPs:   []string{"1.2.3.4", "5.6.7.8"},
		ResponseCode: 503,
		RetryAfter:   "120",
	}
	if got := rec.Settings(); !reflect.DeepEqual(got, want) {
		t.Errorf("Import result = %+v, want %+v", got, want)
	}

	rec.Import(map[string]any{"response_code": "not-a-number"})
	if rec.Settings().ResponseCode != 0 {
		t.Errorf("非数字状态码应转换为 0，实际 %d", rec.Settings().ResponseCode)
	}
}

func TestImport_EnvValues(t *testing.T) {
	_, client := testutil.NewRedis(t)
	rec, err := maintenance.Open(context.Background(), client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}

	rec.Import(maintenance.EnvValues([]string{
		"PATH=/usr/bin",
		"reason=Deploying v2",
		"allowed_ips=10.0.0.1,10.0.0.2",
		"response_code=",
		"REASON=ignored",
	}))

	s := rec.Settings()
	if s.Reason != "Deploying v2" {
		t.Errorf("Reason = %q", s.Reason)
	}
	if !reflect.DeepEqual(s.AllowedIPs, []string{"10.0.0.1", "10.0.0.2"}) {
		t.Errorf("AllowedIPs = %v", s.AllowedIPs)
	}
	if s.ResponseCode != 503 {
		t.Errorf("空环境变量不应覆盖状态码，实际 %d", s.ResponseCode)
	}
}

func TestOpen_IgnoresUnknownStoredFields(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	mr.HSet(testKey, "reason", "stored", "legacy_field", "whatever", "response_code", "429")

	rec, err := maintenance.Open(context.Background(), client, testKey, newDefaults())
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if s := rec.Settings(); s.Reason != "stored" || s.ResponseCode != 429 {
		t.Errorf("unexpected settings: %+v", s)
	}
	if _, ok := rec.AsMap()["legacy_field"]; ok {
		t.Error("未识别字段不应出现在 AsMap 中")
	}
}

func TestOpen_CorruptCompositeField(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	mr.HSet(testKey, "allowed_paths", "not json")

	_, err := maintenance.Open(context.Background(), client, testKey, newDefaults())
	if !apperrors.HasErrorCode(err, apperrors.ErrCodeDecode) {
		t.Fatalf("期望 DECODE 错误，实际 %v", err)
	}
}

func TestStoreErrorsPropagate(t *testing.T) {
	mr, client := testutil.NewRedis(t)
	ctx := context.Background()

	rec, err := maintenance.Open(ctx, client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}

	mr.SetError("ERR simulated outage")
	defer mr.SetError("")

	checks := map[string]error{
		"Write":  rec.Write(ctx),
		"Delete": rec.Delete(ctx),
	}
	_, existsErr := rec.Exists(ctx)
	checks["Exists"] = existsErr
	_, openErr := maintenance.Open(ctx, client, testKey, newDefaults())
	checks["Open"] = openErr

	for op, err := range checks {
		if err == nil || !strings.Contains(err.Error(), "simulated outage") {
			t.Errorf("%s: 期望透传存储错误，实际 %v", op, err)
		}
		if apperrors.IsAppError(err) {
			t.Errorf("%s: 存储错误不应被包装为 AppError", op)
		}
	}
}

func TestSettings_ReturnsCopy(t *testing.T) {
	_, client := testutil.NewRedis(t)
	rec, err := maintenance.Open(context.Background(), client, testKey, newDefaults())
	if err != nil {
		t.Fatal(err)
	}
	rec.SetAllowedPaths([]string{"/a"})

	s := rec.Settings()
	s.AllowedPaths[0] = "/mutated"
	if rec.Settings().AllowedPaths[0] != "/a" {
		t.Error("Settings() 返回的切片不应与内部状态共享")
	}
}
