package nodetree

import "errors"

// ErrNodeMissing reports that a required structural node (alias target,
// configuration root, named edit model) is absent. Operations that hit it
// abort; callers surface the failure rather than substituting defaults.
var ErrNodeMissing = errors.New("required node missing")
