package model

import "time"

// SystemFolders maps system folder roles to their paths
type SystemFolders struct {
	Odnoklassniki string `json:"odnoklassniki,omitempty"`
	Google        string `json:"google,omitempty"`
	Instagram     string `json:"instagram,omitempty"`
	Vkontakte     string `json:"vkontakte,omitempty"`
	Attach        string `json:"attach,omitempty"`
	Mailru        string `json:"mailru,omitempty"`
	Downloads     string `json:"downloads,omitempty"`
	Applications  string `json:"applications,omitempty"`
	Facebook      string `json:"facebook,omitempty"`
	Social        string `json:"social,omitempty"`
	Messenger     string `json:"messenger,omitempty"`
	Calendar      string `json:"calendar,omitempty"`
	Photostream   string `json:"photostream,omitempty"`
	Screenshots   string `json:"screenshots,omitempty"`
	Scans         string `json:"scans,omitempty"`
}

// User is the owner of the disk
type User struct {
	RegTime     *time.Time `json:"reg_time,omitempty"`
	DisplayName string     `json:"display_name,omitempty"`
	UID         string     `json:"uid,omitempty"`
	Country     string     `json:"country,omitempty"`
	IsChild     *bool      `json:"is_child,omitempty"`
	Login       string     `json:"login,omitempty"`
}

// DiskInfo describes the disk and its quota
type DiskInfo struct {
	DeletionRestrictionDays         *int           `json:"deletion_restriction_days,omitempty"`
	FreePhotounlimEndDate           *int64         `json:"free_photounlim_end_date,omitempty"`
	HideScreenshotsInPhotoslice     *bool          `json:"hide_screenshots_in_photoslice,omitempty"`
	IsIDMManagedFolderAddressAccess *bool          `json:"is_idm_managed_folder_address_access,omitempty"`
	IsIDMManagedPublicAccess        *bool          `json:"is_idm_managed_public_access,omitempty"`
	IsLegalEntity                   *bool          `json:"is_legal_entity,omitempty"`
	IsPaid                          *bool          `json:"is_paid,omitempty"`
	MaxFileSize                     *int64         `json:"max_file_size,omitempty"`
	PaidMaxFileSize                 *int64         `json:"paid_max_file_size,omitempty"`
	PaymentFlow                     *bool          `json:"payment_flow,omitempty"`
	PhotounlimSize                  *int64         `json:"photounlim_size,omitempty"`
	RegTime                         *time.Time     `json:"reg_time,omitempty"`
	Revision                        *int64         `json:"revision,omitempty"`
	SystemFolders                   *SystemFolders `json:"system_folders,omitempty"`
	TotalSpace                      *int64         `json:"total_space,omitempty" validate:"omitempty,gte=0"`
	TrashSize                       *int64         `json:"trash_size,omitempty" validate:"omitempty,gte=0"`
	UnlimitedAutouploadEnabled      *bool          `json:"unlimited_autoupload_enabled,omitempty"`
	UsedSpace                       *int64         `json:"used_space,omitempty" validate:"omitempty,gte=0"`
	User                            *User          `json:"user,omitempty"`
	WillBeOverdrawn                 *bool          `json:"will_be_overdrawn,omitempty"`
}
