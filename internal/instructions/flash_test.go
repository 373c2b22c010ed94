package instructions

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestFlashCommands_Vendor uses the vendor syntax with upper-cased partitions and double-dash flags.
func TestFlashCommands_Vendor(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"heimdall flash --AP AP.img",
		"heimdall flash --BL BL.img",
	}, FlashCommands("Samsung", "Samsung", []string{"AP", "BL"}))

	require.Equal(t, []string{"heimdall flash --BOOT boot.img"},
		FlashCommands("samsung ", "Samsung", []string{"boot"}))
}

// TestFlashCommands_Generic uses fastboot and wipes super_empty instead of flashing it.
func TestFlashCommands_Generic(t *testing.T) {
	t.Parallel()

	require.Equal(t, []string{
		"fastboot flash boot boot.img",
		"fastboot wipe-super super_empty.img",
	}, FlashCommands("Google", "Samsung", []string{"boot", "super_empty"}))

	require.Equal(t, []string{"fastboot wipe-super super_empty.img"},
		FlashCommands("Samsung", "Samsung", []string{"super_empty"}))

	require.Equal(t, "fastboot", ToolFor("Xiaomi", "").Name)
	require.Empty(t, FlashCommands("Google", "Samsung", nil))
}

// TestVersionFromDownload covers plain and /download suffixed URLs and bad input.
func TestVersionFromDownload(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		download string
		want     string
		wantErr  bool
	}{
		{
			name:     "plain file",
			download: "https://example.com/files/device/1.2.3/file.zip",
			want:     "1.2.3",
		},
		{
			name:     "release host download suffix",
			download: "https://sourceforge.net/projects/evolution-x/files/husky/10.2/EvolutionX-husky.zip/download",
			want:     "10.2",
		},
		{
			name:     "trailing slash",
			download: "https://example.com/device/9.0/file.zip/",
			want:     "9.0",
		},
		{
			name:     "no version directory",
			download: "https://example.com/file.zip",
			wantErr:  true,
		},
		{
			name:     "unparsable",
			download: "http://[::1",
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := VersionFromDownload(tt.download)
			if tt.wantErr {
				require.Error(t, err)

				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}
