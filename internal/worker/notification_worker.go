package worker

import (
	"github.com/spec-kit/warehouse-ticketing/internal/service"
)

// StartNotificationWorker registers the notification coordinator on the
// event dispatcher.
func StartNotificationWorker(notificationService *service.NotificationService) {
	if notificationService == nil {
		return
	}
	notificationService.RegisterHandlers()
}
