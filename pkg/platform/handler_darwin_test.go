//go:build darwin

// pkg/platform/handler_darwin_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: None
// PURPOSE: Launch Services plist parsing selects only the extension entries
// slap manages, never URL scheme, content-type, or role-specific entries

package platform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lsPreferencesFixture mirrors the shape of a real
// com.apple.launchservices.secure.plist: extension handlers mixed with URL
// scheme, UTI content-type, and role-specific entries.
const lsPreferencesFixture = `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE plist PUBLIC "-//Apple//DTD PLIST 1.0//EN" "http://www.apple.com/DTDs/PropertyList-1.0.dtd">
<plist version="1.0">
<dict>
	<key>LSHandlers</key>
	<array>
		<dict>
			<key>LSHandlerURLScheme</key>
			<string>http</string>
			<key>LSHandlerRoleAll</key>
			<string>com.example.browser</string>
		</dict>
		<dict>
			<key>LSHandlerContentTagClass</key>
			<string>public.filename-extension</string>
			<key>LSHandlerContentTag</key>
			<string>md</string>
			<key>LSHandlerRoleAll</key>
			<string>com.example.editor</string>
		</dict>
		<dict>
			<key>LSHandlerContentType</key>
			<string>public.plain-text</string>
			<key>LSHandlerRoleAll</key>
			<string>com.example.notes</string>
		</dict>
		<dict>
			<key>LSHandlerContentTagClass</key>
			<string>public.filename-extension</string>
			<key>LSHandlerContentTag</key>
			<string>txt</string>
			<key>LSHandlerRoleViewer</key>
			<string>com.example.viewer</string>
		</dict>
		<dict>
			<key>LSHandlerContentTagClass</key>
			<string>public.filename-extension</string>
			<key>LSHandlerContentTag</key>
			<string>md</string>
			<key>LSHandlerRoleAll</key>
			<string>com.example.other</string>
		</dict>
	</array>
</dict>
</plist>
`

func TestLSHandlerIndices_MatchesOnlyOwnedExtensionEntries(t *testing.T) {
	indices, err := lsHandlerIndices([]byte(lsPreferencesFixture), "md")
	require.NoError(t, err)

	// Both md entries, and nothing else: the URL scheme handler at 0, the
	// content-type handler at 2, and the txt handler at 3 stay untouched.
	assert.Equal(t, []int{1, 4}, indices)
}

func TestLSHandlerIndices_UnclaimedTag(t *testing.T) {
	indices, err := lsHandlerIndices([]byte(lsPreferencesFixture), "pdf")
	require.NoError(t, err)
	assert.Empty(t, indices)
}

func TestLSHandlerIndices_NoHandlersKey(t *testing.T) {
	plist := `<?xml version="1.0" encoding="UTF-8"?>
<plist version="1.0"><dict><key>Other</key><string>x</string></dict></plist>`

	indices, err := lsHandlerIndices([]byte(plist), "md")
	require.NoError(t, err)
	assert.Empty(t, indices)
}
