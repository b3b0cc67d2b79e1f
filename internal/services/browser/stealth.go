package browser

// stealthScript is installed on every new document of a session tab
// to hide the usual headless automation markers
const stealthScript = `
	// Override navigator.webdriver to hide automation
	Object.defineProperty(navigator, 'webdriver', { get: () => undefined, configurable: true });
	// Override navigator.plugins to appear like a real browser
	Object.defineProperty(navigator, 'plugins', {
		get: () => {
			const plugins = [
				{ name: 'Chrome PDF Plugin', filename: 'internal-pdf-viewer' },
				{ name: 'Chrome PDF Viewer', filename: 'mhjfbmdgcfjbbpaeojofohoefgiehjai' },
				{ name: 'Native Client', filename: 'internal-nacl-plugin' }
			];
			plugins.length = 3;
			return plugins;
		},
		configurable: true
	});
	// Override navigator.languages
	Object.defineProperty(navigator, 'languages', { get: () => ['en-US', 'en'], configurable: true });
	// Override chrome.runtime
	if (!window.chrome) { window.chrome = {}; }
	window.chrome.runtime = {};
	// Override permissions query
	if (window.navigator.permissions && window.navigator.permissions.query) {
		const originalQuery = window.navigator.permissions.query;
		window.navigator.permissions.query = (parameters) => (
			parameters.name === 'notifications' ?
				Promise.resolve({ state: Notification.permission }) :
				originalQuery(parameters)
		);
	}
`
