package driver

// AndroidCapabilities builds the session capabilities for driving the
// booking app on a device. noReset keeps the app's login state intact
// between sessions; newCommandTimeout is generous because a full detail
// extraction can sit on one screen for a while.
func AndroidCapabilities(deviceName, appPackage, appActivity string) map[string]any {
	return map[string]any{
		"platformName":             "Android",
		"appium:automationName":    "UiAutomator2",
		"appium:deviceName":        deviceName,
		"appium:appPackage":        appPackage,
		"appium:appActivity":       appActivity,
		"appium:noReset":           true,
		"appium:fullReset":         false,
		"appium:newCommandTimeout": 300,
	}
}
