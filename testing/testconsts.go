package testing

import "time"

// Logger Constants
const (
	// TestLoggerLevelDebug is the debug log level used in most tests
	TestLoggerLevelDebug = "debug"
	// TestLoggerLevelDisabled completely disables logging in tests
	TestLoggerLevelDisabled = "disabled"
)

// API Constants
// Base URLs and credentials shared by client tests.
const (
	TestBaseURL      = "https://cloud-api.yandex.net"
	TestOAuthURL     = "https://oauth.yandex.ru"
	TestToken        = "y0_test-token"
	TestClientID     = "test-client-id"
	TestClientSecret = "test-client-secret"
	TestOperationID  = "d80c269ce4eb16c0207f0a15t4a31415313452f9e950cd9576f36b1146ee0e42"
	TestUploadHref   = "https://uploader1g.disk.yandex.net:443/upload-target/test"
	TestDownloadHref = "https://downloader.disk.yandex.ru/disk/test"
)

// Path Constants
const (
	TestDirPath   = "disk:/test-dir"
	TestFilePath  = "disk:/test-dir/file.txt"
	TestTrashPath = "trash:/file.txt"
)

// Timing Constants
// Short intervals keep retry and polling tests fast.
const (
	TestPollInterval  = 5 * time.Millisecond
	TestRetryInterval = time.Millisecond
	TestShortTimeout  = 100 * time.Millisecond
)
