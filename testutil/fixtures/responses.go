// =============================================================================
// 📦 测试数据工厂 - 托管 API 响应测试数据
// =============================================================================
// 提供预定义的 Imagen / Gemini / Veo 响应体，用于测试
// =============================================================================
package fixtures

import (
	"encoding/base64"
	"encoding/json"
)

// =============================================================================
// 🎯 载荷
// =============================================================================

// PNG 返回一个最小的 PNG 签名字节序列（不是可解码图像，仅作透传载荷）。
func PNG() []byte {
	return []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}
}

// MP4 返回假视频载荷
func MP4() []byte {
	return []byte("\x00\x00\x00\x18ftypmp42")
}

// SVG 是示例矢量标记
const SVG = `<svg viewBox="0 0 100 100"></svg>`

// FencedSVG 模型常见的带围栏输出
const FencedSVG = "```svg" + SVG + "```"

// CoffeeShop 示例 logo 描述
const CoffeeShop = "a coffee shop called The Daily Grind"

// =============================================================================
// 🎯 响应体工厂
// =============================================================================

// ImagenPredictResponse 返回 :predict 响应体，data 为空时返回无预测结果。
func ImagenPredictResponse(data []byte) string {
	preds := []map[string]string{}
	if len(data) > 0 {
		preds = append(preds, map[string]string{
			"bytesBase64Encoded": base64.StdEncoding.EncodeToString(data),
			"mimeType":           "image/png",
		})
	}
	return mustJSON(map[string]any{"predictions": preds})
}

// GenerateContentResponse 返回 :generateContent 响应体。
func GenerateContentResponse(text string) string {
	return mustJSON(map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]string{"text": text}},
				},
				"finishReason": "STOP",
			},
		},
	})
}

// OperationPending 返回进行中的 operation。
func OperationPending(name string) string {
	return mustJSON(map[string]any{"name": name, "done": false})
}

// OperationDone 返回已完成的 operation，uri 为空时不含样本。
func OperationDone(name, uri string) string {
	samples := []any{}
	if uri != "" {
		samples = append(samples, map[string]any{"video": map[string]string{"uri": uri}})
	}
	return mustJSON(map[string]any{
		"name": name,
		"done": true,
		"response": map[string]any{
			"generateVideoResponse": map[string]any{"generatedSamples": samples},
		},
	})
}

// OperationFailed 返回失败的 operation。
func OperationFailed(name, message string) string {
	return mustJSON(map[string]any{
		"name":  name,
		"done":  true,
		"error": map[string]any{"code": 13, "message": message},
	})
}

// APIError 返回 Google 风格的错误体。
func APIError(code int, message string) string {
	return mustJSON(map[string]any{
		"error": map[string]any{"code": code, "message": message},
	})
}

func mustJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return string(data)
}
