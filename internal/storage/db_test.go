package storage

import (
	"path/filepath"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"clipforge-ai/internal/appdirs"
	"clipforge-ai/internal/types"
)

func TestResolveDBPathUsesCacheDir(t *testing.T) {
	originalResolver := appDirsResolver
	t.Cleanup(func() {
		appDirsResolver = originalResolver
	})

	tempDir := t.TempDir()
	cacheDir := filepath.Join(tempDir, "cache-root")
	appDirsResolver = func() (appdirs.Paths, error) {
		return appdirs.Paths{
			OutputDir: filepath.Join(tempDir, "output-root"),
			CacheDir:  cacheDir,
		}, nil
	}

	got, err := resolveDBPath()
	if err != nil {
		t.Fatalf("resolveDBPath() returned error: %v", err)
	}

	want := filepath.Join(cacheDir, "clipforge.db")
	if got != want {
		t.Fatalf("resolveDBPath() = %q, want %q", got, want)
	}
}

func openTestDB(t *testing.T) {
	t.Helper()

	original := DB
	t.Cleanup(func() { DB = original })

	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&types.ClipTask{}, &types.EditorSessionRecord{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	DB = db
}

func TestSaveTaskUpsertsByTaskId(t *testing.T) {
	openTestDB(t)

	task := &types.ClipTask{
		TaskId:   "task-1",
		VideoSrc: "https://media.example/a.mp4",
		Status:   types.ClipTaskStatusProcessing,
	}
	if err := SaveTask(task); err != nil {
		t.Fatalf("SaveTask() create returned error: %v", err)
	}

	task.Status = types.ClipTaskStatusSuccess
	task.Id = 0 // callers are not required to carry the primary key
	if err := SaveTask(task); err != nil {
		t.Fatalf("SaveTask() update returned error: %v", err)
	}

	got, err := GetTask("task-1")
	if err != nil {
		t.Fatalf("GetTask() returned error: %v", err)
	}
	if got.Status != types.ClipTaskStatusSuccess {
		t.Fatalf("GetTask().Status = %d, want %d", got.Status, types.ClipTaskStatusSuccess)
	}

	var count int64
	DB.Model(&types.ClipTask{}).Count(&count)
	if count != 1 {
		t.Fatalf("task count = %d, want 1", count)
	}
}

func TestMarkStaleTasks(t *testing.T) {
	openTestDB(t)

	_ = SaveTask(&types.ClipTask{TaskId: "running", Status: types.ClipTaskStatusProcessing})
	_ = SaveTask(&types.ClipTask{TaskId: "done", Status: types.ClipTaskStatusSuccess})

	count, err := MarkStaleTasks()
	if err != nil {
		t.Fatalf("MarkStaleTasks() returned error: %v", err)
	}
	if count != 1 {
		t.Fatalf("MarkStaleTasks() = %d, want 1", count)
	}

	got, _ := GetTask("running")
	if got.Status != types.ClipTaskStatusFailed {
		t.Fatalf("stale task status = %d, want %d", got.Status, types.ClipTaskStatusFailed)
	}
	done, _ := GetTask("done")
	if done.Status != types.ClipTaskStatusSuccess {
		t.Fatalf("finished task status changed to %d", done.Status)
	}
}

func TestDeleteTaskRemovesSessions(t *testing.T) {
	openTestDB(t)

	_ = SaveTask(&types.ClipTask{TaskId: "task-1", Status: types.ClipTaskStatusSuccess})
	_ = SaveEditorSession(&types.EditorSessionRecord{Token: "tok-1", TaskId: "task-1", StateJson: "{}"})

	if err := DeleteTask("task-1"); err != nil {
		t.Fatalf("DeleteTask() returned error: %v", err)
	}

	if _, err := GetTask("task-1"); err == nil {
		t.Fatal("GetTask() found a deleted task")
	}
	if _, err := GetEditorSession("tok-1"); err == nil {
		t.Fatal("GetEditorSession() found a session of a deleted task")
	}
}

func TestSaveEditorSessionUpsertsByToken(t *testing.T) {
	openTestDB(t)

	record := &types.EditorSessionRecord{Token: "tok-1", TaskId: "task-1", StateJson: `{"v":1}`}
	if err := SaveEditorSession(record); err != nil {
		t.Fatalf("SaveEditorSession() create returned error: %v", err)
	}

	record.Id = 0
	record.StateJson = `{"v":2}`
	if err := SaveEditorSession(record); err != nil {
		t.Fatalf("SaveEditorSession() update returned error: %v", err)
	}

	got, err := GetEditorSession("tok-1")
	if err != nil {
		t.Fatalf("GetEditorSession() returned error: %v", err)
	}
	if got.StateJson != `{"v":2}` {
		t.Fatalf("StateJson = %q, want %q", got.StateJson, `{"v":2}`)
	}

	var count int64
	DB.Model(&types.EditorSessionRecord{}).Count(&count)
	if count != 1 {
		t.Fatalf("session count = %d, want 1", count)
	}
}
