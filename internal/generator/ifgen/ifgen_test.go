package ifgen

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/legato-af/mktools/internal/model"
)

func TestRenderSortsAndSuffixesIncludes(t *testing.T) {
	comp := &model.Component{
		Name: "myComp",
		RequiredApis: []*model.ApiInterfaceInstance{
			{Api: &model.ApiFile{Path: "dir/zeta.api"}},
		},
		ProvidedApis: []*model.ApiInterfaceInstance{
			{Api: &model.ApiFile{Path: "dir/alpha.api"}, IsProvided: true},
		},
	}
	out := string(Render(comp))
	assert.Contains(t, out, "MYCOMP_INTERFACES_H_INCLUDE_GUARD")
	assert.Contains(t, out, "alpha_server.h")
	assert.Contains(t, out, "zeta_client.h")

	alphaIdx := indexOf(out, "alpha_server.h")
	zetaIdx := indexOf(out, "zeta_client.h")
	assert.Less(t, alphaIdx, zetaIdx)
}

func indexOf(s, sub string) int {
	for i := 0; i+len(sub) <= len(s); i++ {
		if s[i:i+len(sub)] == sub {
			return i
		}
	}
	return -1
}
