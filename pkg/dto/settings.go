package dto

type UpdateSettingsRequest struct {
	Theme                    *string `json:"theme,omitempty"`
	Language                 *string `json:"language,omitempty"`
	ItemsPerPage             *int    `json:"items_per_page,omitempty"`
	DefaultDueDateDays       *int    `json:"default_due_date_days,omitempty"`
	EnableEmailNotifications *bool   `json:"enable_email_notifications,omitempty"`
	EnablePushNotifications  *bool   `json:"enable_push_notifications,omitempty"`
	AutoArchiveCompleted     *bool   `json:"auto_archive_completed,omitempty"`
}
