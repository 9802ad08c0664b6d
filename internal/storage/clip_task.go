package storage

import (
	"errors"

	"gorm.io/gorm"

	"clipforge-ai/internal/types"
)

var ErrDBNotInitialized = errors.New("database not initialized")

// SaveTask upserts by TaskId: TaskId is the stable external identifier, the
// numeric primary key is an implementation detail.
func SaveTask(task *types.ClipTask) error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	var existing types.ClipTask
	result := DB.Where("task_id = ?", task.TaskId).First(&existing)
	if result.Error == nil {
		task.Id = existing.Id
		return DB.Save(task).Error
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(task).Error
	}
	return result.Error
}

func GetTask(taskId string) (*types.ClipTask, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var task types.ClipTask
	if err := DB.Where("task_id = ?", taskId).First(&task).Error; err != nil {
		return nil, err
	}
	return &task, nil
}

func GetTaskHistory(limit int) ([]types.ClipTask, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var tasks []types.ClipTask
	if err := DB.Order("create_time desc").Limit(limit).Find(&tasks).Error; err != nil {
		return nil, err
	}
	return tasks, nil
}

func DeleteTask(taskId string) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	if err := DB.Where("task_id = ?", taskId).Delete(&types.EditorSessionRecord{}).Error; err != nil {
		return err
	}
	return DB.Where("task_id = ?", taskId).Delete(&types.ClipTask{}).Error
}

// MarkStaleTasks fails every task still marked processing. Called on server
// startup to clean up tasks interrupted by a restart.
func MarkStaleTasks() (int64, error) {
	if DB == nil {
		return 0, ErrDBNotInitialized
	}
	result := DB.Model(&types.ClipTask{}).
		Where("status = ?", types.ClipTaskStatusProcessing).
		Updates(map[string]interface{}{
			"status":      types.ClipTaskStatusFailed,
			"fail_reason": "Task interrupted by server restart",
			"status_msg":  "Interrupted",
		})
	return result.RowsAffected, result.Error
}

// SaveEditorSession upserts the persisted snapshot of an editor session.
func SaveEditorSession(record *types.EditorSessionRecord) error {
	if DB == nil {
		return ErrDBNotInitialized
	}

	var existing types.EditorSessionRecord
	result := DB.Where("token = ?", record.Token).First(&existing)
	if result.Error == nil {
		record.Id = existing.Id
		return DB.Save(record).Error
	}
	if errors.Is(result.Error, gorm.ErrRecordNotFound) {
		return DB.Create(record).Error
	}
	return result.Error
}

func GetEditorSession(token string) (*types.EditorSessionRecord, error) {
	if DB == nil {
		return nil, ErrDBNotInitialized
	}
	var record types.EditorSessionRecord
	if err := DB.Where("token = ?", token).First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

func DeleteEditorSession(token string) error {
	if DB == nil {
		return ErrDBNotInitialized
	}
	return DB.Where("token = ?", token).Delete(&types.EditorSessionRecord{}).Error
}
