// 版权所有 2024 logomotion Authors. 版权所有。
// 此源代码的使用由 MIT 许可规范,该许可可以是
// 在LICENSE文件中找到。

/*
包 image 提供栅格图像生成抽象，用于 logo 流水线中的 PNG 部分。

# 核心接口

  - Provider：图像生成提供者接口，包含 Generate（文生图）与 Name。
  - GenerateRequest / GenerateResponse：生成请求与响应模型。
  - ImageData：base64 图像数据，Bytes() 解码，GenerateResponse.First()
    取第一张非空图像。

# 主要能力

  - ImagenProvider：通过 Gemini API 的 models/{model}:predict 调用
    Imagen 4，支持 sampleCount、aspectRatio 与输出 MIME 类型。
  - 请求级凭据：API Key 优先取 context 中的 llm.CredentialOverride。
*/
package image
