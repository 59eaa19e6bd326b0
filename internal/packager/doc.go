// Package packager demuxes the intermediate MP4 into DASH tracks and a
// manifest with Shaka Packager.
//
// The packager runs once per input with one stream descriptor per output
// track. It executes inside the working directory so every output lands
// there. The manifest base URL points at the publish location, which is why
// the remote prefix must be known before packaging starts.
package packager
