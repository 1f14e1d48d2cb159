package parser

import (
	"strings"

	mkerrors "github.com/legato-af/mktools/internal/errors"
	"github.com/legato-af/mktools/internal/lexer"
	"github.com/legato-af/mktools/internal/parsetree"
)

// RequiresResult holds what ParseRequiresSection collects from a
// "requires:" section shared by .cdef and .adef: nested "api:", "file:",
// "dir:", "device:", "configTrees:" lists, plus (cdef-only) a
// "component:" name list. An unrecognised sub-keyword is a parse error.
type RequiresResult struct {
	Apis         []parsetree.RequiredApi
	Files        []parsetree.RequiredFile
	Dirs         []parsetree.RequiredDir
	Devices      []parsetree.RequiredDevice
	ConfigTrees  []parsetree.RequiredConfigTree
	Components   []string
}

func ParseRequiresSection(lx *lexer.Lexer, name *lexer.Token) (*RequiresResult, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	res := &RequiresResult{}
	for !lx.IsMatch(lexer.CloseCurly) {
		sub, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch sub.Text {
		case "api":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredApiItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Apis = append(res.Apis, *(it.(*parsetree.RequiredApi)))
			}
		case "file":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredFileItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Files = append(res.Files, *(it.(*parsetree.RequiredFile)))
			}
		case "dir":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredDirItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Dirs = append(res.Dirs, *(it.(*parsetree.RequiredDir)))
			}
		case "device":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredDeviceItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Devices = append(res.Devices, *(it.(*parsetree.RequiredDevice)))
			}
		case "configTrees":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredConfigTreeItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.ConfigTrees = append(res.ConfigTrees, *(it.(*parsetree.RequiredConfigTree)))
			}
		case "component":
			list, diag := ParseTokenListSection(lx, sub, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			for _, tok := range list.Items {
				res.Components = append(res.Components, tok.Text)
			}
		default:
			return nil, sub.ThrowException("unrecognised requires: sub-section %q", sub.Text)
		}
	}
	if _, diag := lx.Pull(lexer.CloseCurly); diag != nil {
		return nil, diag
	}
	return res, nil
}

// ParseBundlesSection parses a "bundles:" section: nested "file:"/"dir:"
// lists reusing the same item grammar as "requires:".
type BundlesResult struct {
	Files []parsetree.RequiredFile
	Dirs  []parsetree.RequiredDir
}

func ParseBundlesSection(lx *lexer.Lexer, name *lexer.Token) (*BundlesResult, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	res := &BundlesResult{}
	for !lx.IsMatch(lexer.CloseCurly) {
		sub, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch sub.Text {
		case "file":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredFileItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Files = append(res.Files, *(it.(*parsetree.RequiredFile)))
			}
		case "dir":
			list, diag := ParseNamedComplexSection(lx, sub, parseRequiredDirItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Dirs = append(res.Dirs, *(it.(*parsetree.RequiredDir)))
			}
		default:
			return nil, sub.ThrowException("unrecognised bundles: sub-section %q", sub.Text)
		}
	}
	if _, diag := lx.Pull(lexer.CloseCurly); diag != nil {
		return nil, diag
	}
	return res, nil
}

func parseRequiredFileItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	src, dest, diag := pathPair(lx)
	if diag != nil {
		return nil, diag
	}
	return &parsetree.RequiredFile{
		Base:     parsetree.Base{First: src, Last: dest},
		SrcPath:  src.Text,
		DestPath: dest.Text,
	}, nil
}

func parseRequiredDirItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	src, dest, diag := pathPair(lx)
	if diag != nil {
		return nil, diag
	}
	return &parsetree.RequiredDir{
		Base:     parsetree.Base{First: src, Last: dest},
		SrcPath:  src.Text,
		DestPath: dest.Text,
	}, nil
}

func parseRequiredDeviceItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	src, dest, diag := pathPair(lx)
	if diag != nil {
		return nil, diag
	}
	dev := &parsetree.RequiredDevice{
		Base:     parsetree.Base{First: src, Last: dest},
		SrcPath:  src.Text,
		DestPath: dest.Text,
	}
	if lx.IsMatch(lexer.FilePermissions) {
		perm, diag := lx.Pull(lexer.FilePermissions)
		if diag != nil {
			return nil, diag
		}
		dev.Permissions = perm.Text
		dev.Last = perm
	}
	return dev, nil
}

func parseRequiredConfigTreeItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	first := lx.Loc()
	var tree *lexer.Token
	var diag *mkerrors.Diagnostic
	if lx.IsMatch(lexer.Dot) {
		tree, diag = lx.Pull(lexer.Dot)
	} else {
		tree, diag = lx.Pull(lexer.FilePath)
	}
	if diag != nil {
		return nil, diag
	}
	node := &parsetree.RequiredConfigTree{
		Base:     parsetree.Base{First: tree, Last: tree},
		TreeName: tree.Text,
	}
	if lx.IsMatch(lexer.FilePermissions) {
		opt, diag := lx.Pull(lexer.FilePermissions)
		if diag != nil {
			return nil, diag
		}
		if strings.Contains(opt.Text, "w") {
			node.Writable = true
		}
		node.Last = opt
	}
	_ = first
	return node, nil
}

func parseRequiredApiItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	alias, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	api := &parsetree.RequiredApi{Base: parsetree.Base{First: alias}}
	if lx.IsMatch(lexer.Equals) {
		if diag := lexer.ConvertToName(alias); diag != nil {
			return nil, diag
		}
		api.Alias = alias.Text
		if _, diag := lx.Pull(lexer.Equals); diag != nil {
			return nil, diag
		}
		path, diag := lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
		alias = path
	}
	api.Path = alias.Text
	api.Last = alias
	for lx.IsMatch(lexer.ClientIPCOption) {
		opt, diag := lx.Pull(lexer.ClientIPCOption)
		if diag != nil {
			return nil, diag
		}
		switch opt.Text {
		case "manual-start":
			api.ManualStart = true
		case "types-only":
			api.TypesOnly = true
		case "optional":
			api.Optional = true
		}
		api.Last = opt
	}
	return api, nil
}

func parseProvidedApiItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	alias, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	api := &parsetree.ProvidedApi{Base: parsetree.Base{First: alias}}
	if lx.IsMatch(lexer.Equals) {
		if diag := lexer.ConvertToName(alias); diag != nil {
			return nil, diag
		}
		api.Alias = alias.Text
		if _, diag := lx.Pull(lexer.Equals); diag != nil {
			return nil, diag
		}
		path, diag := lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
		alias = path
	}
	api.Path = alias.Text
	api.Last = alias
	for lx.IsMatch(lexer.ClientIPCOption) {
		opt, diag := lx.Pull(lexer.ClientIPCOption)
		if diag != nil {
			return nil, diag
		}
		switch opt.Text {
		case "manual-start":
			api.ManualStart = true
		case "async":
			api.Async = true
		}
		api.Last = opt
	}
	return api, nil
}

// ParseProvidesSection parses a (deprecated in .adef) "provides:"
// section: an "api:" sub-list of ProvidedApi entries. The caller is
// responsible for emitting the deprecation diagnostic.
func ParseProvidesSection(lx *lexer.Lexer, name *lexer.Token) ([]parsetree.ProvidedApi, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	var out []parsetree.ProvidedApi
	for !lx.IsMatch(lexer.CloseCurly) {
		sub, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		if sub.Text != "api" {
			return nil, sub.ThrowException("unrecognised provides: sub-section %q", sub.Text)
		}
		list, diag := ParseNamedComplexSection(lx, sub, parseProvidedApiItem)
		if diag != nil {
			return nil, diag
		}
		for _, it := range list.Items {
			out = append(out, *(it.(*parsetree.ProvidedApi)))
		}
	}
	if _, diag := lx.Pull(lexer.CloseCurly); diag != nil {
		return nil, diag
	}
	return out, nil
}

// pullDottedRef pulls one dotted interface reference in either spelling
// the scanner produces: a single DOTTED_NAME word ("a.b.c") or separate
// NAME and DOT tokens ("a . b . c"), up to max segments. Returns the
// segments plus the first and last token for provenance.
func pullDottedRef(lx *lexer.Lexer, max int) ([]string, *lexer.Token, *lexer.Token, *mkerrors.Diagnostic) {
	first, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, nil, nil, diag
	}
	last := first
	parts := strings.Split(first.Text, ".")
	for len(parts) < max && lx.IsMatch(lexer.Dot) {
		if _, diag := lx.Pull(lexer.Dot); diag != nil {
			return nil, nil, nil, diag
		}
		next, diag := lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, nil, nil, diag
		}
		parts = append(parts, strings.Split(next.Text, ".")...)
		last = next
	}
	if len(parts) > max {
		return nil, nil, nil, first.ThrowException("too many \".\"-separated parts in %q", strings.Join(parts, "."))
	}
	return parts, first, last, nil
}

// ParseBindingItem parses one "bindings:" entry in any of its three
// grammatical shapes (spec.md §4.3): a pre-built wildcard
// ("* . NAME -> IPC_AGENT . NAME"), normal, or internal exe-to-exe.
func ParseBindingItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	b := &parsetree.Binding{}

	if lx.IsMatch(lexer.Star) {
		star, diag := lx.Pull(lexer.Star)
		if diag != nil {
			return nil, diag
		}
		b.Base.First = star
		b.Shape = parsetree.BindingWildcard
		if _, diag := lx.Pull(lexer.Dot); diag != nil {
			return nil, diag
		}
		iface, diag := lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
		b.ClientInterface = iface.Text
	} else {
		parts, first, _, diag := pullDottedRef(lx, 3)
		if diag != nil {
			return nil, diag
		}
		b.Base.First = first
		switch len(parts) {
		case 2:
			b.ClientExe, b.ClientInterface = parts[0], parts[1]
		case 3:
			b.ClientExe, b.ClientComponent, b.ClientInterface = parts[0], parts[1], parts[2]
		default:
			return nil, first.ThrowException("binding client must name exe.interface or exe.component.interface")
		}
	}

	if _, diag := lx.Pull(lexer.Arrow); diag != nil {
		return nil, diag
	}

	parts, first, last, diag := pullDottedRef(lx, 3)
	if diag != nil {
		return nil, diag
	}
	switch len(parts) {
	case 2:
		agent := parts[0]
		if strings.HasPrefix(agent, "<") && strings.HasSuffix(agent, ">") {
			b.ServerIsUser = true
		}
		b.ServerAgent = agent
		b.ServerInterface = parts[1]
	case 3:
		if b.Shape == parsetree.BindingWildcard {
			return nil, first.ThrowException("wildcard binding server must be agent.interface")
		}
		b.Shape = parsetree.BindingInternal
		b.ServerExe, b.ServerComponent, b.ServerInterface = parts[0], parts[1], parts[2]
	default:
		return nil, first.ThrowException("binding server must name agent.interface or exe.component.interface")
	}
	b.Base.Last = last
	return b, nil
}

// ParseProcessesSection parses one whole "processes:" block: the "run:"
// and "envVars:" sub-lists plus the per-block fault action, priority,
// resource ceilings, and watchdog settings spec.md §3.2 attaches to a
// ProcessEnv.
func ParseProcessesSection(lx *lexer.Lexer, name *lexer.Token) (*parsetree.ProcessEnvSection, *mkerrors.Diagnostic) {
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	res := &parsetree.ProcessEnvSection{Base: parsetree.Base{First: name}}
	for !lx.IsMatch(lexer.CloseCurly) {
		sub, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch sub.Text {
		case "envVars":
			list, diag := ParseNamedComplexSection(lx, sub, parseEnvVarItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.EnvVars = append(res.EnvVars, *(it.(*parsetree.EnvVar)))
			}
		case "run":
			list, diag := ParseNamedComplexSection(lx, sub, parseRunProcessItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				res.Run = append(res.Run, *(it.(*parsetree.RunProcess)))
			}
		case "faultAction":
			_, value, diag := ParseSimpleSection(lx, sub, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			res.FaultAction = value.Text
		case "priority":
			_, value, diag := ParseSimpleSection(lx, sub, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			res.StartPriority = value.Text
		case "maxCoreDumpFileBytes":
			_, n, diag := parseIntSection(lx, sub)
			if diag != nil {
				return nil, diag
			}
			res.MaxCoreDumpFileBytes = &n
		case "maxFileBytes":
			_, n, diag := parseIntSection(lx, sub)
			if diag != nil {
				return nil, diag
			}
			res.MaxFileBytes = &n
		case "maxFileDescriptors":
			_, n, diag := parseIntSection(lx, sub)
			if diag != nil {
				return nil, diag
			}
			res.MaxFileDescs = &n
		case "watchdogAction":
			_, value, diag := ParseSimpleSection(lx, sub, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			res.WatchdogAction = value.Text
		case "watchdogTimeout":
			_, n, diag := parseIntSection(lx, sub)
			if diag != nil {
				return nil, diag
			}
			res.WatchdogTimeoutMs = &n
		default:
			return nil, sub.ThrowException("unrecognised processes: sub-section %q", sub.Text)
		}
	}
	close, diag := lx.Pull(lexer.CloseCurly)
	if diag != nil {
		return nil, diag
	}
	res.Last = close
	return res, nil
}

func parseEnvVarItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	name, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(name); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.Equals); diag != nil {
		return nil, diag
	}
	value, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	return &parsetree.EnvVar{
		Base:  parsetree.Base{First: name, Last: value},
		Name:  name.Text,
		Value: value.Text,
	}, nil
}

func parseRunProcessItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	var procName string
	nameOrExe, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	exeTok := nameOrExe
	if lx.IsMatch(lexer.Equals) {
		if diag := lexer.ConvertToName(nameOrExe); diag != nil {
			return nil, diag
		}
		procName = nameOrExe.Text
		if _, diag := lx.Pull(lexer.Equals); diag != nil {
			return nil, diag
		}
		exeTok, diag = lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
	}
	proc := &parsetree.RunProcess{
		Base:    parsetree.Base{First: nameOrExe, Last: exeTok},
		Name:    procName,
		ExeName: exeTok.Text,
	}
	if proc.Name == "" {
		proc.Name = exeTok.Text
	}
	if lx.IsMatch(lexer.OpenParen) {
		if _, diag := lx.Pull(lexer.OpenParen); diag != nil {
			return nil, diag
		}
		for !lx.IsMatch(lexer.CloseParen) {
			arg, diag := lx.Pull(lexer.Arg)
			if diag != nil {
				return nil, diag
			}
			proc.Args = append(proc.Args, arg.Text)
		}
		close, diag := lx.Pull(lexer.CloseParen)
		if diag != nil {
			return nil, diag
		}
		proc.Last = close
	}
	return proc, nil
}

// ParseExternItem parses one "extern:" entry of an .adef.
func ParseExternItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	ext := &parsetree.ExternApiInterface{}
	exeOrAlias, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	ext.Base.First = exeOrAlias

	externalName := exeOrAlias
	if lx.IsMatch(lexer.Equals) {
		if diag := lexer.ConvertToName(exeOrAlias); diag != nil {
			return nil, diag
		}
		externalName = exeOrAlias
		if _, diag := lx.Pull(lexer.Equals); diag != nil {
			return nil, diag
		}
		exeOrAlias, diag = lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
	} else {
		externalName = nil
	}

	parts := strings.Split(exeOrAlias.Text, ".")
	last := exeOrAlias
	for len(parts) < 3 && lx.IsMatch(lexer.Dot) {
		if _, diag := lx.Pull(lexer.Dot); diag != nil {
			return nil, diag
		}
		next, diag := lx.Pull(lexer.FilePath)
		if diag != nil {
			return nil, diag
		}
		parts = append(parts, strings.Split(next.Text, ".")...)
		last = next
	}
	if len(parts) != 3 {
		return nil, exeOrAlias.ThrowException("extern: entry must name exe.component.interface")
	}
	ext.Exe, ext.Component, ext.Alias = parts[0], parts[1], parts[2]
	ext.Base.Last = last
	if externalName != nil {
		ext.ExternalName = externalName.Text
	}
	return ext, nil
}

// ParseAssetItem parses one "assets:" entry, with its nested
// "settings:"/"variables:"/"commands:" sub-lists.
func ParseAssetItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	name, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(name); diag != nil {
		return nil, diag
	}
	asset := &parsetree.Asset{Base: parsetree.Base{First: name, Last: name}, Name: name.Text}
	if _, diag := lx.Pull(lexer.OpenCurly); diag != nil {
		return nil, diag
	}
	for !lx.IsMatch(lexer.CloseCurly) {
		sub, diag := sectionName(lx)
		if diag != nil {
			return nil, diag
		}
		switch sub.Text {
		case "settings":
			list, diag := ParseNamedComplexSection(lx, sub, parseAssetSettingItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				asset.Settings = append(asset.Settings, *(it.(*parsetree.AssetSetting)))
			}
		case "variables":
			list, diag := ParseNamedComplexSection(lx, sub, parseAssetVariableItem)
			if diag != nil {
				return nil, diag
			}
			for _, it := range list.Items {
				asset.Variables = append(asset.Variables, *(it.(*parsetree.AssetVariable)))
			}
		case "commands":
			list, diag := ParseTokenListSection(lx, sub, lexer.FilePath)
			if diag != nil {
				return nil, diag
			}
			for _, tok := range list.Items {
				asset.Commands = append(asset.Commands, parsetree.AssetCommand{
					Base: parsetree.Base{First: tok, Last: tok}, Name: tok.Text,
				})
			}
		default:
			return nil, sub.ThrowException("unrecognised assets: sub-section %q", sub.Text)
		}
	}
	close, diag := lx.Pull(lexer.CloseCurly)
	if diag != nil {
		return nil, diag
	}
	asset.Last = close
	return asset, nil
}

func parseAssetSettingItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	name, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(name); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.Equals); diag != nil {
		return nil, diag
	}
	value, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	return &parsetree.AssetSetting{
		Base: parsetree.Base{First: name, Last: value}, Name: name.Text, Value: value.Text,
	}, nil
}

func parseAssetVariableItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	name, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(name); diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.Colon); diag != nil {
		return nil, diag
	}
	typeTok, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if diag := lexer.ConvertToName(typeTok); diag != nil {
		return nil, diag
	}
	var defaultKind lexer.Kind
	switch typeTok.Text {
	case "bool":
		defaultKind = lexer.Boolean
	case "int":
		defaultKind = lexer.SignedInteger
	case "float":
		defaultKind = lexer.Float
	case "string":
		defaultKind = lexer.String
	default:
		return nil, typeTok.ThrowException("unknown asset field type %q (expected bool, int, float, or string)", typeTok.Text)
	}
	v := &parsetree.AssetVariable{
		Base: parsetree.Base{First: name, Last: typeTok}, Name: name.Text, Type: typeTok.Text,
	}
	if lx.IsMatch(lexer.Equals) {
		if _, diag := lx.Pull(lexer.Equals); diag != nil {
			return nil, diag
		}
		def, diag := lx.Pull(defaultKind)
		if diag != nil {
			return nil, diag
		}
		v.Default = def.Text
		v.Last = def
	}
	return v, nil
}

// ParsePoolItem parses one "pools:" entry.
func ParsePoolItem(lx *lexer.Lexer) (parsetree.Node, *mkerrors.Diagnostic) {
	alias, diag := lx.Pull(lexer.FilePath)
	if diag != nil {
		return nil, diag
	}
	if _, diag := lx.Pull(lexer.Equals); diag != nil {
		return nil, diag
	}
	size, diag := lx.Pull(lexer.Integer)
	if diag != nil {
		return nil, diag
	}
	n := 0
	for _, c := range size.Text {
		n = n*10 + int(c-'0')
	}
	return &parsetree.Pool{
		Base: parsetree.Base{First: alias, Last: size}, ApiAlias: alias.Text, Size: n,
	}, nil
}
