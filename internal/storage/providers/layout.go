package providers

import "path"

// On-disk layout of a template:
//
//	{template_id}/
//	  meta.yaml
//	  versions/
//	    v{X.Y.Z}/
//	      meta.yaml
//	      template.docx
//	      template.json
//	      static/
const (
	MetaFile         = "meta.yaml"
	TemplateDocxFile = "template.docx"
	TemplateJSONFile = "template.json"
	VersionsDir      = "versions"
	StaticDir        = "static"
)

func MetaPath(root string) string {
	return path.Join(root, MetaFile)
}

func VersionsPath(templatePath string) string {
	return path.Join(templatePath, VersionsDir)
}

func VersionPath(templatePath, tag string) string {
	return path.Join(templatePath, VersionsDir, tag)
}

func TemplateDocxPath(versionPath string) string {
	return path.Join(versionPath, TemplateDocxFile)
}

func TemplateJSONPath(versionPath string) string {
	return path.Join(versionPath, TemplateJSONFile)
}

func StaticPath(versionPath string) string {
	return path.Join(versionPath, StaticDir)
}
