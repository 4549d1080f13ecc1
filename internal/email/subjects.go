package email

const (
	subjectRateAlertFmt = "Target rate reached for %s"
	subjectDigestFmt    = "Today's call list: %d clients worth calling"
)
